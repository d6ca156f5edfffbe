package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted blobs carry plain JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

type TableStatus string

const (
	StatusIdle   TableStatus = "idle"
	StatusActive TableStatus = "active"
	StatusPaused TableStatus = "paused"
	StatusDone   TableStatus = "done"
)

type Duration struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// TableSession is one physical gaming station and its current occupancy.
// Timestamps are Unix milliseconds; PausedDuration is the billable time
// accumulated up to the latest pause point, in milliseconds.
type TableSession struct {
	ID                string           `json:"id"`
	Name              string           `json:"name,omitempty"`
	Status            TableStatus      `json:"status"`
	StartTime         *int64           `json:"startTime,omitempty"`
	EndTime           *int64           `json:"endTime,omitempty"`
	PausedAt          *int64           `json:"pausedAt,omitempty"`
	PausedDuration    *int64           `json:"pausedDuration,omitempty"`
	TotalMinutes      *int64           `json:"totalMinutes,omitempty"`
	TotalPrice        decimal.Decimal  `json:"totalPrice"`
	TotalDuration     *Duration        `json:"totalDuration,omitempty"`
	GamingConfig      *GamingConfig    `json:"gamingConfig,omitempty"`
	OrderedProducts   []Product        `json:"orderedProducts"`
	TransferredAmount *decimal.Decimal `json:"transferredAmount,omitempty"`
}

// NewIdleTable returns an empty table ready to be started.
func NewIdleTable(id string) TableSession {
	return TableSession{
		ID:              id,
		Status:          StatusIdle,
		OrderedProducts: []Product{},
		TotalPrice:      decimal.Zero,
	}
}

// Label is the operator-facing name, falling back to the id.
func (t TableSession) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return "Table " + t.ID
}

// Clone returns a copy that shares no pointers or slices with t.
func (t TableSession) Clone() TableSession {
	c := t
	c.StartTime = clonePtr(t.StartTime)
	c.EndTime = clonePtr(t.EndTime)
	c.PausedAt = clonePtr(t.PausedAt)
	c.PausedDuration = clonePtr(t.PausedDuration)
	c.TotalMinutes = clonePtr(t.TotalMinutes)
	c.TotalDuration = clonePtr(t.TotalDuration)
	c.GamingConfig = clonePtr(t.GamingConfig)
	c.TransferredAmount = clonePtr(t.TransferredAmount)
	if t.OrderedProducts != nil {
		c.OrderedProducts = slices.Clone(t.OrderedProducts)
	}
	return c
}

// CloneTables deep-copies a table list.
func CloneTables(tables []TableSession) []TableSession {
	out := make([]TableSession, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr is a small helper for the optional fields above.
func Ptr[T any](v T) *T {
	return &v
}
