package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FeeCalculator bills parking time per started minute.
type FeeCalculator struct {
	ratePerMinute decimal.Decimal
}

func NewFeeCalculator(ratePerMinute decimal.Decimal) (*FeeCalculator, error) {
	if ratePerMinute.IsNegative() {
		return nil, fmt.Errorf("fee: rate per minute must not be negative, got %s", ratePerMinute)
	}
	return &FeeCalculator{ratePerMinute: ratePerMinute}, nil
}

func (c *FeeCalculator) RatePerMinute() decimal.Decimal {
	return c.ratePerMinute
}

// BilledMinutes rounds the parked time up to whole minutes, with a minimum
// of one minute. A now before entry is treated as zero elapsed time.
func (c *FeeCalculator) BilledMinutes(entry, now time.Time) int64 {
	elapsed := now.Sub(entry)
	if elapsed < 0 {
		elapsed = 0
	}

	minutes := int64(elapsed / time.Minute)
	if elapsed%time.Minute != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Fee returns the amount due, rounded to the minor unit.
func (c *FeeCalculator) Fee(entry, now time.Time) decimal.Decimal {
	minutes := decimal.NewFromInt(c.BilledMinutes(entry, now))
	return minutes.Mul(c.ratePerMinute).Round(2)
}
