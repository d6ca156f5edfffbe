// Package billing holds the session arithmetic shared by the table state
// machine and the live projector: billable time, duration buckets and price.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

// BillableMillis is the active, non-paused time of t at now (Unix ms). A
// paused table bills only its accumulated duration; a table that never
// started bills nothing.
func BillableMillis(t models.TableSession, now int64) int64 {
	accumulated := deref(t.PausedDuration)
	if t.Status == models.StatusPaused {
		return accumulated
	}
	if t.StartTime == nil {
		return 0
	}
	return accumulated + (now - *t.StartTime)
}

// Split floors ms to whole seconds and buckets it into h/m/s.
func Split(ms int64) models.Duration {
	if ms < 0 {
		ms = 0
	}
	total := ms / msPerSecond
	return models.Duration{
		Hours:   total / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

func Minutes(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	return ms / msPerMinute
}

// TimePrice charges ms at hourlyRate, rounded half-up to a whole unit.
func TimePrice(ms int64, hourlyRate decimal.Decimal) decimal.Decimal {
	if ms <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(ms).
		Mul(hourlyRate).
		Div(decimal.NewFromInt(msPerHour)).
		Round(0)
}

// ProductTotal is the exact, unrounded sum of product prices.
func ProductTotal(products []models.Product) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(p.Price)
	}
	return sum
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
