package billing

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

// FormatMoney renders an amount with thousands separators and at most two
// decimals, e.g. 1,250.5.
func FormatMoney(d decimal.Decimal) string {
	if d.IsInteger() {
		return humanize.Comma(d.IntPart())
	}
	return humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

// FormatDuration renders a duration as HH:MM:SS.
func FormatDuration(d models.Duration) string {
	return fmt.Sprintf("%02d:%02d:%02d", d.Hours, d.Minutes, d.Seconds)
}
