package services

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"parking-system/internal/status"
	"parking-system/models"

	"github.com/shopspring/decimal"
)

// Barrier identifies which gate opens.
type Barrier string

const (
	BarrierEntry Barrier = "entry"
	BarrierExit  Barrier = "exit"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Notifier receives display and barrier events. Implementations must not
// fail the caller; errors stay inside the notifier.
type Notifier interface {
	OnCapacityChanged(freeSlots int)
	OnBarrierOpen(which Barrier)
}

// PaymentRecorder observes completed payments. It has no effect on the
// facility state.
type PaymentRecorder interface {
	RecordPayment(ticket models.Ticket, amount decimal.Decimal)
}

type noopNotifier struct{}

func (noopNotifier) OnCapacityChanged(int) {}
func (noopNotifier) OnBarrierOpen(Barrier) {}

type Option func(*Facility)

func WithClock(clock Clock) Option {
	return func(f *Facility) { f.clock = clock }
}

func WithNotifier(notifier Notifier) Option {
	return func(f *Facility) { f.notifier = notifier }
}

func WithPaymentRecorder(recorder PaymentRecorder) Option {
	return func(f *Facility) { f.recorder = recorder }
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Facility) { f.logger = logger }
}

// Facility owns the ticket registry and the slot counter.
//
// freeSlots + len(active) == capacity holds after every operation, and
// ticket ids are handed out once, from 1 up to capacity.
type Facility struct {
	name     string
	capacity int
	fees     *FeeCalculator

	clock    Clock
	notifier Notifier
	recorder PaymentRecorder
	logger   *slog.Logger

	mu        sync.Mutex
	freeSlots int
	nextID    int
	active    map[string]*models.Ticket
}

func NewFacility(name string, capacity int, ratePerMinute decimal.Decimal, opts ...Option) (*Facility, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("facility: capacity must be at least 1, got %d", capacity)
	}

	fees, err := NewFeeCalculator(ratePerMinute)
	if err != nil {
		return nil, err
	}

	f := &Facility{
		name:      name,
		capacity:  capacity,
		fees:      fees,
		clock:     systemClock{},
		notifier:  noopNotifier{},
		logger:    slog.Default(),
		freeSlots: capacity,
		nextID:    1,
		active:    make(map[string]*models.Ticket, capacity),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Facility) Name() string { return f.name }

func (f *Facility) Capacity() int { return f.capacity }

func (f *Facility) Fees() *FeeCalculator { return f.fees }

// Issue hands out the next ticket and opens the entry barrier.
func (f *Facility) Issue() (*models.Ticket, error) {
	f.mu.Lock()
	if f.freeSlots <= 0 || f.nextID > f.capacity {
		f.mu.Unlock()
		f.logger.Info("Ticket refused, facility full", "facility", f.name)
		return nil, status.ErrUnavailable
	}

	ticket := models.NewTicket(strconv.Itoa(f.nextID), f.clock.Now())
	f.active[ticket.ID] = ticket
	f.nextID++
	f.freeSlots--
	free := f.freeSlots
	issued := *ticket
	f.mu.Unlock()

	f.logger.Info("Ticket issued", "facility", f.name, "ticket_id", issued.ID, "free_slots", free)

	f.notifier.OnCapacityChanged(free)
	f.notifier.OnBarrierOpen(BarrierEntry)

	return &issued, nil
}

// Find returns a snapshot of an active ticket.
func (f *Facility) Find(id string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.active[id]
	if !ok {
		return nil, fmt.Errorf("find %q: %w", id, status.ErrNotFound)
	}

	snapshot := *ticket
	return &snapshot, nil
}

// ComputeFee quotes the amount due right now. It can be called any number
// of times and changes nothing.
func (f *Facility) ComputeFee(id string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.active[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("fee %q: %w", id, status.ErrNotFound)
	}

	return f.fees.Fee(ticket.EntryTime, f.clock.Now()), nil
}

// Pay marks the ticket as paid at the fee due right now. Paying twice is
// not an error.
func (f *Facility) Pay(id string) error {
	return f.pay(id, nil)
}

// PayQuoted marks the ticket as paid and records the amount the customer
// confirmed, even if the fee has moved on since the quote.
func (f *Facility) PayQuoted(id string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("pay %q: amount must not be negative, got %s", id, amount)
	}
	return f.pay(id, &amount)
}

func (f *Facility) pay(id string, quoted *decimal.Decimal) error {
	f.mu.Lock()
	ticket, ok := f.active[id]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("pay %q: %w", id, status.ErrNotFound)
	}

	now := f.clock.Now()
	amount := f.fees.Fee(ticket.EntryTime, now)
	if quoted != nil {
		amount = *quoted
	}
	changed := ticket.MarkPaid(now)
	paid := *ticket
	f.mu.Unlock()

	if !changed {
		f.logger.Debug("Ticket already paid", "ticket_id", id)
		return nil
	}

	f.logger.Info("Payment registered", "ticket_id", id, "amount", amount.StringFixed(2))
	if f.recorder != nil {
		f.recorder.RecordPayment(paid, amount)
	}

	return nil
}

// Exit releases the slot of a paid ticket and opens the exit barrier. The
// ticket is gone from the registry afterwards.
func (f *Facility) Exit(id string) error {
	f.mu.Lock()
	ticket, ok := f.active[id]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("exit %q: %w", id, status.ErrNotFound)
	}
	if !ticket.IsPaid() {
		f.mu.Unlock()
		f.logger.Info("Exit refused, ticket not paid", "ticket_id", id)
		return fmt.Errorf("exit %q: %w", id, status.ErrNotPaid)
	}

	ticket.Close(f.clock.Now())
	delete(f.active, id)
	if f.freeSlots < f.capacity {
		f.freeSlots++
	}
	free := f.freeSlots
	f.mu.Unlock()

	f.logger.Info("Ticket closed", "facility", f.name, "ticket_id", id, "free_slots", free)

	f.notifier.OnCapacityChanged(free)
	f.notifier.OnBarrierOpen(BarrierExit)

	return nil
}

func (f *Facility) FreeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.freeSlots
}

func (f *Facility) ActiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}
