package notify

import (
	"fmt"
	"io"

	"parking-system/internal/services"
)

// Console stands in for the display board and the barrier motors by
// printing what they would show.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) OnCapacityChanged(freeSlots int) {
	fmt.Fprintf(c.out, "Free slots: %d\n", freeSlots)
}

func (c *Console) OnBarrierOpen(which services.Barrier) {
	fmt.Fprintf(c.out, "Barrier (%s) opens.\n", which)
}
