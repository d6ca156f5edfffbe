package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

const hour = int64(3_600_000)

func product(id string, price int64) models.Product {
	return models.Product{ID: id, Name: id, Price: decimal.NewFromInt(price)}
}

func config(rate int64) *models.GamingConfig {
	return &models.GamingConfig{
		PSModel:         models.PS4,
		ControllerCount: models.TwoControllers,
		HourlyRate:      decimal.NewFromInt(rate),
	}
}

func TestSplit(t *testing.T) {
	assert.Equal(t, models.Duration{Hours: 1}, Split(hour))
	assert.Equal(t, models.Duration{Hours: 1, Minutes: 1, Seconds: 1}, Split(hour+61_999))
	assert.Equal(t, models.Duration{}, Split(999))
	assert.Equal(t, models.Duration{}, Split(-5))
}

func TestMinutes(t *testing.T) {
	assert.Equal(t, int64(60), Minutes(hour))
	assert.Equal(t, int64(0), Minutes(59_999))
}

func TestTimePriceRoundsHalfUp(t *testing.T) {
	assert.True(t, TimePrice(hour, decimal.NewFromInt(100)).Equal(decimal.NewFromInt(100)))
	// 18 seconds at 100/h is exactly 0.5.
	assert.True(t, TimePrice(18_000, decimal.NewFromInt(100)).Equal(decimal.NewFromInt(1)))
	assert.True(t, TimePrice(17_999, decimal.NewFromInt(100)).Equal(decimal.Zero))
	assert.True(t, TimePrice(0, decimal.NewFromInt(100)).IsZero())
}

func TestProductTotalIsExact(t *testing.T) {
	products := []models.Product{
		{ID: "a", Price: decimal.RequireFromString("2.25")},
		{ID: "b", Price: decimal.RequireFromString("0.5")},
	}
	assert.Equal(t, "2.75", ProductTotal(products).String())
	assert.True(t, ProductTotal(nil).IsZero())
}

func TestBillableMillis(t *testing.T) {
	start := int64(1_000)
	active := models.TableSession{Status: models.StatusActive, StartTime: &start, PausedDuration: models.Ptr(int64(500))}
	assert.Equal(t, int64(2_500), BillableMillis(active, 3_000))

	paused := models.TableSession{Status: models.StatusPaused, StartTime: &start, PausedDuration: models.Ptr(int64(500))}
	assert.Equal(t, int64(500), BillableMillis(paused, 99_000))

	assert.Equal(t, int64(0), BillableMillis(models.NewIdleTable("1"), 99_000))
}

func TestProjectActive(t *testing.T) {
	now := time.UnixMilli(10 * hour)
	start := now.UnixMilli() - hour
	table := models.TableSession{
		Status:          models.StatusActive,
		StartTime:       &start,
		PausedDuration:  models.Ptr(int64(30 * 60_000)),
		GamingConfig:    config(100),
		OrderedProducts: []models.Product{product("cola", 20)},
	}

	p := Project(table, now)
	assert.True(t, p.Ticking)
	assert.Equal(t, models.Duration{Hours: 1, Minutes: 30}, p.Elapsed)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(170)), p.Price.String())
	// Stored total is not touched.
	assert.True(t, table.TotalPrice.IsZero())
}

func TestProjectPausedIsFrozen(t *testing.T) {
	table := models.TableSession{
		Status:         models.StatusPaused,
		StartTime:      models.Ptr(int64(0)),
		PausedAt:       models.Ptr(hour),
		PausedDuration: models.Ptr(hour),
		GamingConfig:   config(150),
	}

	first := Project(table, time.UnixMilli(2*hour))
	later := Project(table, time.UnixMilli(5*hour))
	assert.False(t, first.Ticking)
	assert.Equal(t, first, later)
	assert.True(t, first.Price.Equal(decimal.NewFromInt(150)))
}

func TestProjectDoneEchoesStoredTotals(t *testing.T) {
	table := models.TableSession{
		Status:        models.StatusDone,
		TotalPrice:    decimal.NewFromInt(345),
		TotalDuration: &models.Duration{Hours: 2, Minutes: 3, Seconds: 4},
	}
	p := Project(table, time.Now())
	assert.Equal(t, models.Duration{Hours: 2, Minutes: 3, Seconds: 4}, p.Elapsed)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(345)))
}

func TestProjectIdleIsZero(t *testing.T) {
	p := Project(models.NewIdleTable("1"), time.Now())
	assert.Equal(t, models.Duration{}, p.Elapsed)
	assert.True(t, p.Price.IsZero())
	assert.False(t, p.Ticking)
}

func TestWatcherRunTicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	source := func() []models.TableSession {
		return []models.TableSession{models.NewIdleTable("1")}
	}
	sink := func(entries []Entry) {
		mu.Lock()
		defer mu.Unlock()
		require.Len(t, entries, 1)
		calls++
		if calls == 3 {
			cancel()
		}
	}

	err := Watcher{Interval: time.Millisecond}.Run(ctx, source, sink)
	assert.ErrorIs(t, err, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, calls, 3)
}
