package tables

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryRepo is an in-memory Repository that records every save.
type memoryRepo struct {
	stored []models.TableSession
	saves  int
	err    error
}

func (r *memoryRepo) LoadTables(context.Context) ([]models.TableSession, error) {
	if r.stored == nil {
		return SeedTables(), nil
	}
	return models.CloneTables(r.stored), nil
}

func (r *memoryRepo) SaveTables(_ context.Context, tables []models.TableSession) error {
	r.saves++
	if r.err != nil {
		return r.err
	}
	r.stored = models.CloneTables(tables)
	return nil
}

func newManager(t *testing.T, repo Repository) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: epoch}
	m := NewManager(repo, zap.NewNop(), WithClock(clock.Now))
	require.NoError(t, m.Init(context.Background()))
	return m, clock
}

func TestInitSeedsEightTables(t *testing.T) {
	repo := &memoryRepo{}
	m, _ := newManager(t, repo)

	tables := m.Tables()
	require.Len(t, tables, 8)
	for i, tbl := range tables {
		assert.Equal(t, string(rune('1'+i)), tbl.ID)
		assert.Equal(t, models.StatusIdle, tbl.Status)
	}
	assert.Equal(t, 1, repo.saves)
}

func TestDispatchPersistsEveryTransition(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	m, clock := newManager(t, repo)

	require.NoError(t, m.Start(ctx, "3", ps4(100)))
	assert.Equal(t, models.StatusActive, find(t, repo.stored, "3").Status)

	clock.Advance(time.Hour)
	require.NoError(t, m.Stop(ctx, "3"))

	stored := find(t, repo.stored, "3")
	assert.Equal(t, models.StatusDone, stored.Status)
	assertMoney(t, 100, stored.TotalPrice)
	assert.Equal(t, 3, repo.saves)
}

func TestTransferToSelfDoesNotPersist(t *testing.T) {
	repo := &memoryRepo{}
	m, _ := newManager(t, repo)
	before := m.Tables()

	require.NoError(t, m.Transfer(context.Background(), "1", "1"))
	assert.Equal(t, before, m.Tables())
	assert.Equal(t, 1, repo.saves)
}

func TestPersistErrorKeepsMemoryState(t *testing.T) {
	repo := &memoryRepo{}
	m, _ := newManager(t, repo)
	repo.err = errors.New("disk full")

	err := m.Start(context.Background(), "1", ps4(100))
	assert.ErrorContains(t, err, "disk full")

	tbl, err := m.Table("1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, tbl.Status)
}

func TestTableLookup(t *testing.T) {
	m, _ := newManager(t, &memoryRepo{})
	_, err := m.Table("404")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestAddTableReturnsNewTable(t *testing.T) {
	m, _ := newManager(t, &memoryRepo{})
	tbl, err := m.AddTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9", tbl.ID)
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	m, _ := newManager(t, &memoryRepo{})

	var got []models.TableSession
	m.OnChange(func(tables []models.TableSession) { got = tables })

	require.NoError(t, m.Rename(context.Background(), "2", "Pencere"))
	assert.Equal(t, "Pencere", find(t, got, "2").Name)

	got[0].Name = "mutated"
	tbl, _ := m.Table(got[0].ID)
	assert.NotEqual(t, "mutated", tbl.Name)
}

func TestOnChangeSeesDispatchOrder(t *testing.T) {
	m, _ := newManager(t, &memoryRepo{})

	var (
		counts   []int
		inFlight atomic.Int32
		overlaps atomic.Int32
	)
	m.OnChange(func(tables []models.TableSession) {
		if inFlight.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(time.Millisecond)
		counts = append(counts, len(tables))
		inFlight.Add(-1)
	})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AddTable(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps.Load())
	require.Len(t, counts, 20)
	for i, n := range counts {
		assert.Equal(t, 9+i, n, "snapshot %d arrived out of order", i)
	}
	assert.Len(t, m.Tables(), 28)
}

func TestKVRoundTripIsLossless(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	m, clock := newManager(t, NewKVRepository(kv, zap.NewNop()))

	require.NoError(t, m.Start(ctx, "1", ps4(150)))
	require.NoError(t, m.AddProduct(ctx, "1", models.Product{ID: "tea", Name: "Çay", Price: decimal.RequireFromString("10.5")}))
	clock.Advance(20 * time.Minute)
	require.NoError(t, m.Pause(ctx, "1"))
	require.NoError(t, m.Start(ctx, "2", ps4(100)))
	clock.Advance(time.Hour)
	require.NoError(t, m.Transfer(ctx, "2", "3"))
	require.NoError(t, m.Rename(ctx, "4", "Köşe"))
	require.NoError(t, m.Start(ctx, "5", ps4(100)))
	require.NoError(t, m.Stop(ctx, "5"))

	want, err := json.Marshal(m.Tables())
	require.NoError(t, err)

	reloaded, _ := newManager(t, NewKVRepository(kv, zap.NewNop()))
	got, err := json.Marshal(reloaded.Tables())
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got))
}

func TestFromContext(t *testing.T) {
	m, _ := newManager(t, &memoryRepo{})
	ctx := WithManager(context.Background(), m)
	assert.Same(t, m, FromContext(ctx))

	assert.Panics(t, func() { FromContext(context.Background()) })
}
