package tables

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/storage"
)

const (
	StorageKey = "gaming_tables_data"
	seedCount  = 8
)

// Repository persists the whole table list as one document.
type Repository interface {
	// LoadTables returns the stored list, or the seed list when nothing
	// usable is stored. A failed read is an error, never a seed.
	LoadTables(ctx context.Context) ([]models.TableSession, error)
	SaveTables(ctx context.Context, tables []models.TableSession) error
}

// SeedTables is the list a fresh install starts with.
func SeedTables() []models.TableSession {
	seed := make([]models.TableSession, 0, seedCount)
	for i := 1; i <= seedCount; i++ {
		seed = append(seed, models.NewIdleTable(strconv.Itoa(i)))
	}
	return seed
}

type KVRepository struct {
	kv  storage.KV
	log *zap.Logger
}

func NewKVRepository(kv storage.KV, log *zap.Logger) *KVRepository {
	return &KVRepository{kv: kv, log: log.Named("tables.repository")}
}

func (r *KVRepository) LoadTables(ctx context.Context) ([]models.TableSession, error) {
	var tables []models.TableSession
	stored, err := storage.LoadJSON(ctx, r.kv, r.log, StorageKey, &tables, SeedTables)
	if err != nil {
		return nil, err
	}
	if stored {
		r.log.Info("loaded tables", zap.Int("count", len(tables)))
	}
	if tables == nil {
		tables = []models.TableSession{}
	}
	return tables, nil
}

func (r *KVRepository) SaveTables(ctx context.Context, tables []models.TableSession) error {
	return storage.SaveJSON(ctx, r.kv, StorageKey, tables)
}
