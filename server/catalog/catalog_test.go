package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/storage"
)

func newStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()
	s := NewStore(kv, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	assert.Len(t, s.List(), 6)

	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), StorageKey, "oops"))
	s = newStore(t, kv)
	assert.Len(t, s.List(), 6)
}

func TestAddAssignsIDAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newStore(t, kv)
	s.newID = func() string { return "generated" }

	p, err := s.Add(ctx, models.Product{Name: "Tost", Price: decimal.NewFromInt(30)})
	require.NoError(t, err)
	assert.Equal(t, "generated", p.ID)

	reloaded := newStore(t, kv)
	got, ok := reloaded.Get("generated")
	require.True(t, ok)
	assert.Equal(t, "Tost", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(30)))
}

func TestAddDuplicateIDIsAccepted(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())

	_, err := s.Add(ctx, models.Product{ID: "1", Name: "Kola Zero", Price: decimal.NewFromInt(21)})
	require.NoError(t, err)
	assert.Len(t, s.List(), 7)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())

	require.NoError(t, s.Update(ctx, models.Product{ID: "3", Name: "Çay", Price: decimal.NewFromInt(12)}))
	got, _ := s.Get("3")
	assert.True(t, got.Price.Equal(decimal.NewFromInt(12)))

	err := s.Update(ctx, models.Product{ID: "nope", Name: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())

	require.NoError(t, s.Remove(ctx, "2"))
	_, ok := s.Get("2")
	assert.False(t, ok)
	assert.Len(t, s.List(), 5)

	require.NoError(t, s.Remove(ctx, "missing"))
	assert.Len(t, s.List(), 5)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())

	_, err := s.Add(ctx, models.Product{Name: " ", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = s.Add(ctx, models.Product{Name: "Bad", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestListReturnsCopy(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	list := s.List()
	list[0].Name = "changed"

	got, _ := s.Get(list[0].ID)
	assert.NotEqual(t, "changed", got.Name)
}
