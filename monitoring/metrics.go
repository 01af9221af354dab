package monitoring

import (
	"time"

	"parking-system/internal/services"
	"parking-system/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Monitor exports facility activity as prometheus metrics. It plugs into
// the facility both as a Notifier and as a PaymentRecorder.
type Monitor struct {
	facility string

	freeSlots       prometheus.Gauge
	barrierOpenings *prometheus.CounterVec
	payments        prometheus.Counter
	revenue         prometheus.Counter
	parkingDuration prometheus.Histogram
}

func NewMonitor(reg prometheus.Registerer, facility string) *Monitor {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"facility": facility}

	return &Monitor{
		facility: facility,
		freeSlots: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "parking_free_slots",
			Help:        "Current number of free parking slots",
			ConstLabels: labels,
		}),
		barrierOpenings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "parking_barrier_openings_total",
				Help:        "Total barrier openings",
				ConstLabels: labels,
			},
			[]string{"barrier"},
		),
		payments: factory.NewCounter(prometheus.CounterOpts{
			Name:        "parking_payments_total",
			Help:        "Total registered payments",
			ConstLabels: labels,
		}),
		revenue: factory.NewCounter(prometheus.CounterOpts{
			Name:        "parking_revenue_total",
			Help:        "Total amount paid",
			ConstLabels: labels,
		}),
		parkingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "parking_duration_seconds",
			Help:        "Time between entry and payment",
			Buckets:     prometheus.ExponentialBuckets(60, 2, 10),
			ConstLabels: labels,
		}),
	}
}

func (m *Monitor) OnCapacityChanged(freeSlots int) {
	m.freeSlots.Set(float64(freeSlots))
}

func (m *Monitor) OnBarrierOpen(which services.Barrier) {
	m.barrierOpenings.WithLabelValues(string(which)).Inc()
}

func (m *Monitor) RecordPayment(ticket models.Ticket, amount decimal.Decimal) {
	m.payments.Inc()
	m.revenue.Add(amount.InexactFloat64())

	paidAt := time.Now()
	if ticket.PaidAt != nil {
		paidAt = *ticket.PaidAt
	}
	m.parkingDuration.Observe(ticket.DurationUntil(paidAt).Seconds())
}

// SetCapacity seeds the free-slot gauge before the first ticket is issued.
func (m *Monitor) SetCapacity(freeSlots int) {
	m.freeSlots.Set(float64(freeSlots))
}
