package models

import (
	"time"
)

// Ticket is one parking session, from entry until the car leaves.
type Ticket struct {
	ID        string     `json:"id"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time,omitempty"`
	Paid      bool       `json:"paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

func NewTicket(id string, entry time.Time) *Ticket {
	return &Ticket{ID: id, EntryTime: entry}
}

// MarkPaid flips the ticket to paid. It reports false when the ticket was
// already paid, in which case nothing changes.
func (t *Ticket) MarkPaid(now time.Time) bool {
	if t.Paid {
		return false
	}
	t.Paid = true
	t.PaidAt = &now
	return true
}

func (t *Ticket) IsPaid() bool {
	return t.Paid
}

// Close records the exit time.
func (t *Ticket) Close(now time.Time) {
	t.ExitTime = &now
}

// DurationUntil returns how long the car has been parked at the given
// moment. Moments before entry count as zero.
func (t *Ticket) DurationUntil(at time.Time) time.Duration {
	if at.Before(t.EntryTime) {
		return 0
	}
	return at.Sub(t.EntryTime)
}
