package tables

import (
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/billing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

// fallbackRate prices product edits on a table that has no config.
var fallbackRate = decimal.NewFromInt(100)

// Apply returns the table list after cmd at now. It never modifies state.
// Commands whose preconditions do not hold leave the list unchanged.
// Stop only finalizes active or paused tables and Transfer ignores a done
// source, so a closed bill is never frozen or carried over twice.
func Apply(state []models.TableSession, cmd Command, now time.Time) []models.TableSession {
	ms := now.UnixMilli()

	switch c := cmd.(type) {
	case Load:
		if c.Tables == nil {
			return []models.TableSession{}
		}
		return models.CloneTables(c.Tables)

	case Start:
		return update(state, c.TableID, func(t *models.TableSession) {
			cfg := c.Config
			t.Status = models.StatusActive
			t.StartTime = models.Ptr(ms)
			t.EndTime = nil
			t.GamingConfig = &cfg
			t.PausedAt = nil
			t.PausedDuration = nil
			t.TotalDuration = nil
			t.TotalMinutes = nil
			t.TotalPrice = decimal.Zero
			t.OrderedProducts = []models.Product{}
			// A received balance does not survive a new session.
			t.TransferredAmount = nil
		})

	case Pause:
		return update(state, c.TableID, func(t *models.TableSession) {
			if t.Status != models.StatusActive || t.StartTime == nil {
				return
			}
			t.PausedDuration = models.Ptr(billing.BillableMillis(*t, ms))
			t.Status = models.StatusPaused
			t.PausedAt = models.Ptr(ms)
		})

	case Resume:
		return update(state, c.TableID, func(t *models.TableSession) {
			if t.Status != models.StatusPaused || t.PausedAt == nil {
				return
			}
			t.Status = models.StatusActive
			t.StartTime = models.Ptr(ms)
			t.PausedAt = nil
		})

	case Stop:
		return update(state, c.TableID, func(t *models.TableSession) {
			if !isOpen(*t) || t.StartTime == nil || t.GamingConfig == nil {
				return
			}
			billable := billing.BillableMillis(*t, ms)
			finalize(t, billable, ms)
			t.TotalPrice = billing.TimePrice(billable, t.GamingConfig.HourlyRate).
				Add(billing.ProductTotal(t.OrderedProducts))
		})

	case Reset:
		return update(state, c.TableID, func(t *models.TableSession) {
			*t = models.TableSession{
				ID:              t.ID,
				Name:            t.Name,
				Status:          models.StatusIdle,
				TotalPrice:      decimal.Zero,
				OrderedProducts: []models.Product{},
			}
		})

	case AddProduct:
		return update(state, c.TableID, func(t *models.TableSession) {
			t.OrderedProducts = append(slices.Clone(t.OrderedProducts), c.Product)
			timePrice := decimal.Zero
			if t.StartTime != nil && t.EndTime != nil {
				timePrice = billing.TimePrice(*t.EndTime-*t.StartTime, rateOf(*t))
			}
			t.TotalPrice = timePrice.Add(billing.ProductTotal(t.OrderedProducts))
		})

	case RemoveProduct:
		return update(state, c.TableID, func(t *models.TableSession) {
			products := slices.Clone(t.OrderedProducts)
			if i := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == c.ProductID }); i >= 0 {
				products = slices.Delete(products, i, i+1)
			}
			if products == nil {
				products = []models.Product{}
			}
			t.OrderedProducts = products

			timePrice := decimal.Zero
			if t.StartTime != nil {
				end := ms
				if t.EndTime != nil {
					end = *t.EndTime
				}
				timePrice = billing.TimePrice(end-*t.StartTime, rateOf(*t))
			}
			t.TotalPrice = timePrice.Add(billing.ProductTotal(t.OrderedProducts))
		})

	case Transfer:
		return transfer(state, c, ms)

	case AddTable:
		next := models.CloneTables(state)
		return append(next, models.NewIdleTable(nextID(state)))

	case DeleteTable:
		next := models.CloneTables(state)
		return slices.DeleteFunc(next, func(t models.TableSession) bool { return t.ID == c.TableID })

	case Rename:
		return update(state, c.TableID, func(t *models.TableSession) {
			t.Name = c.Name
		})
	}

	return models.CloneTables(state)
}

func transfer(state []models.TableSession, c Transfer, ms int64) []models.TableSession {
	if c.From == c.To {
		return models.CloneTables(state)
	}
	from := slices.IndexFunc(state, func(t models.TableSession) bool { return t.ID == c.From })
	to := slices.IndexFunc(state, func(t models.TableSession) bool { return t.ID == c.To })
	if from < 0 || to < 0 || state[from].Status == models.StatusDone {
		return models.CloneTables(state)
	}

	next := models.CloneTables(state)
	src := &next[from]

	billable := billing.BillableMillis(*src, ms)
	rate := decimal.Zero
	if src.GamingConfig != nil {
		rate = src.GamingConfig.HourlyRate
	}
	total := billing.TimePrice(billable, rate).
		Add(billing.ProductTotal(src.OrderedProducts)).
		Add(amountOf(src.TransferredAmount))

	finalize(src, billable, ms)
	src.TotalPrice = total
	src.TransferredAmount = nil

	dst := &next[to]
	dst.TransferredAmount = models.Ptr(amountOf(dst.TransferredAmount).Add(total))

	return next
}

// finalize closes the session timing fields; price is left to the caller.
func finalize(t *models.TableSession, billable, ms int64) {
	t.Status = models.StatusDone
	t.EndTime = models.Ptr(ms)
	t.PausedAt = nil
	t.TotalMinutes = models.Ptr(billing.Minutes(billable))
	d := billing.Split(billable)
	t.TotalDuration = &d
}

func update(state []models.TableSession, id string, fn func(*models.TableSession)) []models.TableSession {
	next := models.CloneTables(state)
	for i := range next {
		if next[i].ID == id {
			fn(&next[i])
		}
	}
	return next
}

func nextID(state []models.TableSession) string {
	maxID, found := 0, false
	for _, t := range state {
		n, err := strconv.Atoi(t.ID)
		if err != nil {
			continue
		}
		if !found || n > maxID {
			maxID, found = n, true
		}
	}
	if !found {
		return "1"
	}
	return strconv.Itoa(maxID + 1)
}

func isOpen(t models.TableSession) bool {
	return t.Status == models.StatusActive || t.Status == models.StatusPaused
}

func rateOf(t models.TableSession) decimal.Decimal {
	if t.GamingConfig == nil {
		return fallbackRate
	}
	return t.GamingConfig.HourlyRate
}

func amountOf(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
