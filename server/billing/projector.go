package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

// Projection is the display-only bill of a table at one instant.
type Projection struct {
	Elapsed models.Duration `json:"elapsed"`
	Price   decimal.Decimal `json:"price"`
	// Ticking reports whether the values change with time.
	Ticking bool `json:"ticking"`
}

// Project derives the live bill of t at now. It never changes t.
func Project(t models.TableSession, now time.Time) Projection {
	switch {
	case t.Status == models.StatusActive && t.StartTime != nil && t.GamingConfig != nil:
		ms := BillableMillis(t, now.UnixMilli())
		return Projection{
			Elapsed: Split(ms),
			Price:   TimePrice(ms, t.GamingConfig.HourlyRate).Add(ProductTotal(t.OrderedProducts)),
			Ticking: true,
		}
	case t.Status == models.StatusPaused:
		ms := deref(t.PausedDuration)
		rate := decimal.Zero
		if t.GamingConfig != nil {
			rate = t.GamingConfig.HourlyRate
		}
		return Projection{
			Elapsed: Split(ms),
			Price:   TimePrice(ms, rate).Add(ProductTotal(t.OrderedProducts)),
		}
	case t.Status == models.StatusDone:
		p := Projection{Price: t.TotalPrice}
		if t.TotalDuration != nil {
			p.Elapsed = *t.TotalDuration
		}
		return p
	default:
		return Projection{Price: decimal.Zero}
	}
}

// Entry pairs a table snapshot with its projection.
type Entry struct {
	Table      models.TableSession
	Projection Projection
}

// ProjectAll projects every table in order.
func ProjectAll(tables []models.TableSession, now time.Time) []Entry {
	entries := make([]Entry, len(tables))
	for i, t := range tables {
		entries[i] = Entry{Table: t, Projection: Project(t, now)}
	}
	return entries
}

// Watcher re-projects a table list on a fixed cadence.
type Watcher struct {
	Interval time.Duration
	Now      func() time.Time
}

// Run calls sink once immediately and then every Interval with fresh
// projections of source(), until ctx is done.
func (w Watcher) Run(ctx context.Context, source func() []models.TableSession, sink func([]Entry)) error {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}

	sink(ProjectAll(source(), now()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sink(ProjectAll(source(), now()))
		}
	}
}
