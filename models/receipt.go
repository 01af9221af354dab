package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Receipt struct {
	Reference string          `json:"reference"`
	TicketID  string          `json:"ticket_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	IssuedAt  time.Time       `json:"issued_at"`
}
