package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/catalog"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/pricing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/tables"
)

var (
	ErrTableBusy   = errors.New("table is not idle")
	ErrInvalidTier = errors.New("unsupported console tier")
)

// desk bundles the stores every operator surface works against.
type desk struct {
	tables  *tables.Manager
	catalog *catalog.Store
	pricing *pricing.Store
	log     *zap.Logger
}

// startSession snapshots the current tier rate and starts the table with it.
func (d *desk) startSession(ctx context.Context, tableID string, model models.PSModel, count models.ControllerCount) error {
	if !model.Valid() || !count.Valid() {
		return fmt.Errorf("%w: %s/%d", ErrInvalidTier, model, count)
	}
	if _, err := d.tables.Table(tableID); err != nil {
		return err
	}
	cfg := d.pricing.Config(model, count)
	d.log.Info("starting session",
		zap.String("table", tableID),
		zap.String("model", string(model)),
		zap.Int("controllers", int(count)),
		zap.String("rate", cfg.HourlyRate.String()))
	return d.tables.Start(ctx, tableID, cfg)
}

// orderProduct attaches a copy of the catalog product to the table.
func (d *desk) orderProduct(ctx context.Context, tableID, productID string) error {
	_, err := d.dispatch(ctx, tables.AddProduct{TableID: tableID, Product: models.Product{ID: productID}})
	return err
}

// dispatch applies a command from a remote surface. Orders only carry a
// product id; name and price always come from the catalog.
func (d *desk) dispatch(ctx context.Context, cmd tables.Command) ([]models.TableSession, error) {
	if add, ok := cmd.(tables.AddProduct); ok {
		p, ok := d.catalog.Get(add.Product.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, add.Product.ID)
		}
		if _, err := d.tables.Table(add.TableID); err != nil {
			return nil, err
		}
		cmd = tables.AddProduct{TableID: add.TableID, Product: p}
	}
	return d.tables.Dispatch(ctx, cmd)
}

// deleteIdleTable removes a table only when nothing is running on it.
func (d *desk) deleteIdleTable(ctx context.Context, tableID string) error {
	t, err := d.tables.Table(tableID)
	if err != nil {
		return err
	}
	if t.Status != models.StatusIdle {
		return fmt.Errorf("%w: %s is %s", ErrTableBusy, tableID, t.Status)
	}
	return d.tables.DeleteTable(ctx, tableID)
}
