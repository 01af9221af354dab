package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"parking-system/internal/status"
	"parking-system/models"
	"parking-system/utils"

	"github.com/shopspring/decimal"
)

// Facility is what the menu needs from services.Facility.
type Facility interface {
	Name() string
	Issue() (*models.Ticket, error)
	Find(id string) (*models.Ticket, error)
	ComputeFee(id string) (decimal.Decimal, error)
	PayQuoted(id string, amount decimal.Decimal) error
	Exit(id string) error
	FreeCount() int
}

// Display shows the free-slot count, usually the facility's notifier.
type Display interface {
	OnCapacityChanged(freeSlots int)
}

// Menu is the line-oriented operator console.
type Menu struct {
	facility Facility
	display  Display
	currency string
	in       io.Reader
	out      io.Writer
	logger   *slog.Logger

	lines   chan string
	readErr error
}

func NewMenu(facility Facility, display Display, currency string, in io.Reader, out io.Writer, logger *slog.Logger) *Menu {
	if logger == nil {
		logger = slog.Default()
	}
	return &Menu{
		facility: facility,
		display:  display,
		currency: currency,
		in:       in,
		out:      out,
		logger:   logger,
	}
}

// Run reads commands until "0", end of input or ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	m.startReader(done)

	fmt.Fprintf(m.out, "Welcome to %s car park\n\n", m.facility.Name())

	for {
		m.printMenu()
		input, err := m.readLine(ctx)
		if err != nil {
			return endOfSession(err)
		}

		switch input {
		case "1":
			m.issue()
		case "2":
			err = m.pay(ctx)
		case "3":
			err = m.exit(ctx)
		case "4":
			m.showFreeSlots()
		case "0":
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid input.")
		}
		if err != nil {
			return endOfSession(err)
		}
		fmt.Fprintln(m.out)
	}
}

// startReader scans input on its own goroutine so a blocked read never
// holds up cancellation.
func (m *Menu) startReader(done <-chan struct{}) {
	m.lines = make(chan string)
	scanner := bufio.NewScanner(m.in)

	go func() {
		defer close(m.lines)
		for scanner.Scan() {
			select {
			case m.lines <- scanner.Text():
			case <-done:
				return
			}
		}
		m.readErr = scanner.Err()
	}()
}

func (m *Menu) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-m.lines:
		if !ok {
			if m.readErr != nil {
				return "", m.readErr
			}
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func endOfSession(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out, "--- Menu ---")
	fmt.Fprintln(m.out, "1) Enter (take ticket)")
	fmt.Fprintln(m.out, "2) Pay")
	fmt.Fprintln(m.out, "3) Exit")
	fmt.Fprintln(m.out, "4) Show free slots")
	fmt.Fprintln(m.out, "0) Quit")
	fmt.Fprint(m.out, "> ")
}

func (m *Menu) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(m.out, label)
	return m.readLine(ctx)
}

func (m *Menu) showFreeSlots() {
	free := m.facility.FreeCount()
	if m.display == nil {
		fmt.Fprintf(m.out, "Free slots: %d\n", free)
		return
	}
	m.display.OnCapacityChanged(free)
}

func (m *Menu) issue() {
	ticket, err := m.facility.Issue()
	if errors.Is(err, status.ErrUnavailable) {
		fmt.Fprintln(m.out, "Car park full - no ticket available.")
		return
	}
	if err != nil {
		m.reportError(err)
		return
	}
	fmt.Fprintf(m.out, "Ticket issued: ID %s\n", ticket.ID)
}

func (m *Menu) pay(ctx context.Context) error {
	id, err := m.prompt(ctx, "Ticket ID: ")
	if err != nil {
		return err
	}

	ticket, err := m.facility.Find(id)
	if err != nil {
		m.reportError(err)
		return nil
	}
	if ticket.Paid {
		fmt.Fprintf(m.out, "Ticket %s is already paid.\n", ticket.ID)
		return nil
	}

	amount, err := m.facility.ComputeFee(id)
	if err != nil {
		m.reportError(err)
		return nil
	}
	fmt.Fprintf(m.out, "Amount due: %s %s\n", amount.StringFixed(2), m.currency)

	answer, err := m.prompt(ctx, "Pay now? (y/n) ")
	if err != nil {
		return err
	}
	if !isYes(answer) {
		return nil
	}

	if err := m.facility.PayQuoted(id, amount); err != nil {
		m.reportError(err)
		return nil
	}

	receipt, err := m.receipt(id, amount)
	if err != nil {
		m.logger.Error("Failed to create receipt", "ticket_id", id, "error", err)
		fmt.Fprintf(m.out, "Paid %s %s. Ticket %s\n", amount.StringFixed(2), m.currency, id)
		return nil
	}
	fmt.Fprintf(m.out, "Paid %s %s. Receipt %s for ticket %s, %s\n",
		receipt.Amount.StringFixed(2), receipt.Currency, receipt.Reference, receipt.TicketID,
		receipt.IssuedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (m *Menu) receipt(id string, amount decimal.Decimal) (*models.Receipt, error) {
	ticket, err := m.facility.Find(id)
	if err != nil {
		return nil, err
	}
	if ticket.PaidAt == nil {
		return nil, fmt.Errorf("receipt %q: ticket has no payment time", id)
	}

	reference, err := utils.GenerateCode(4)
	if err != nil {
		return nil, err
	}

	return &models.Receipt{
		Reference: reference,
		TicketID:  ticket.ID,
		Amount:    amount,
		Currency:  m.currency,
		IssuedAt:  *ticket.PaidAt,
	}, nil
}

func (m *Menu) exit(ctx context.Context) error {
	id, err := m.prompt(ctx, "Ticket ID: ")
	if err != nil {
		return err
	}

	if err := m.facility.Exit(id); err != nil {
		m.reportError(err)
		return nil
	}
	fmt.Fprintln(m.out, "Have a safe trip!")
	return nil
}

func (m *Menu) reportError(err error) {
	switch {
	case errors.Is(err, status.ErrNotFound):
		fmt.Fprintln(m.out, "Unknown ticket ID.")
	case errors.Is(err, status.ErrNotPaid):
		fmt.Fprintln(m.out, "Please pay first!")
	case errors.Is(err, status.ErrUnavailable):
		fmt.Fprintln(m.out, "Car park full - no ticket available.")
	default:
		m.logger.Error("Unexpected facility error", "error", err)
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes", "j", "ja":
		return true
	}
	return false
}
