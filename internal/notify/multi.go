package notify

import "parking-system/internal/services"

// Multi forwards every event to each notifier in order.
type Multi []services.Notifier

func (m Multi) OnCapacityChanged(freeSlots int) {
	for _, n := range m {
		n.OnCapacityChanged(freeSlots)
	}
}

func (m Multi) OnBarrierOpen(which services.Barrier) {
	for _, n := range m {
		n.OnBarrierOpen(which)
	}
}
