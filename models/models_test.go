package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicket_StartsUnpaid(t *testing.T) {
	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ticket := NewTicket("1", entry)

	assert.Equal(t, "1", ticket.ID)
	assert.Equal(t, entry, ticket.EntryTime)
	assert.False(t, ticket.IsPaid())
	assert.Nil(t, ticket.PaidAt)
	assert.Nil(t, ticket.ExitTime)
}

func TestTicket_MarkPaidOnlyOnce(t *testing.T) {
	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ticket := NewTicket("1", entry)

	first := entry.Add(10 * time.Minute)
	assert.True(t, ticket.MarkPaid(first))
	assert.True(t, ticket.IsPaid())
	require.NotNil(t, ticket.PaidAt)
	assert.Equal(t, first, *ticket.PaidAt)

	// A second payment keeps the original timestamp
	assert.False(t, ticket.MarkPaid(entry.Add(20*time.Minute)))
	assert.True(t, ticket.IsPaid())
	assert.Equal(t, first, *ticket.PaidAt)
}

func TestTicket_DurationUntil(t *testing.T) {
	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ticket := NewTicket("7", entry)

	tests := []struct {
		name     string
		at       time.Time
		expected time.Duration
	}{
		{"Same instant", entry, 0},
		{"After entry", entry.Add(125 * time.Second), 125 * time.Second},
		{"Clock skew before entry", entry.Add(-time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ticket.DurationUntil(tt.at))
		})
	}
}

func TestTicket_Close(t *testing.T) {
	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ticket := NewTicket("3", entry)

	exit := entry.Add(time.Hour)
	ticket.Close(exit)

	require.NotNil(t, ticket.ExitTime)
	assert.Equal(t, exit, *ticket.ExitTime)
	assert.Equal(t, entry, ticket.EntryTime)
}

func TestTicket_JSONOmitsUnsetTimes(t *testing.T) {
	ticket := NewTicket("2", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))

	jsonData, err := json.Marshal(ticket)
	require.NoError(t, err)

	assert.NotContains(t, string(jsonData), "exit_time")
	assert.NotContains(t, string(jsonData), "paid_at")
	assert.Contains(t, string(jsonData), `"paid":false`)
}

func TestReceipt_AmountKeepsMinorUnits(t *testing.T) {
	receipt := Receipt{
		Reference: "AB12CD34",
		TicketID:  "1",
		Amount:    decimal.RequireFromString("0.30"),
		Currency:  "CHF",
	}

	jsonData, err := json.Marshal(receipt)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"amount":"0.3"`)

	var unmarshaled Receipt
	require.NoError(t, json.Unmarshal(jsonData, &unmarshaled))
	assert.True(t, receipt.Amount.Equal(unmarshaled.Amount))
	assert.Equal(t, "0.30", unmarshaled.Amount.StringFixed(2))
}
