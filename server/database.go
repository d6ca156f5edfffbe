package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/catalog"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/config"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/pricing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/storage"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/tables"
)

// InitDesk opens the key-value store and loads every document from it.
func InitDesk(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*desk, storage.KV, error) {
	kv, err := storage.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	d := &desk{
		tables:  tables.NewManager(tables.NewKVRepository(kv, log), log),
		catalog: catalog.NewStore(kv, log),
		pricing: pricing.NewStore(kv, log),
		log:     log,
	}
	if err := d.catalog.Load(ctx); err != nil {
		kv.Close()
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := d.pricing.Load(ctx); err != nil {
		kv.Close()
		return nil, nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	if err := d.tables.Init(ctx); err != nil {
		kv.Close()
		return nil, nil, fmt.Errorf("failed to initialise tables: %w", err)
	}

	log.Info("storage ready",
		zap.String("driver", cfg.Driver),
		zap.Int("tables", len(d.tables.Tables())),
		zap.Int("products", len(d.catalog.List())))
	return d, kv, nil
}
