// Package tables owns the authoritative table list and the session state
// machine that changes it.
package tables

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

var ErrTableNotFound = errors.New("tables: table not found")

// Manager serializes commands, applies them and persists the result before
// the next command is accepted.
type Manager struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time

	mu        sync.Mutex
	tables    []models.TableSession
	listeners []func([]models.TableSession)

	// notifyMu is taken before mu is released so listeners see snapshots
	// in dispatch order.
	notifyMu sync.Mutex
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(repo Repository, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		repo:   repo,
		log:    log.Named("tables"),
		now:    time.Now,
		tables: []models.TableSession{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init loads the persisted list, or the seed list, into the manager. When
// the store cannot be read nothing is written back.
func (m *Manager) Init(ctx context.Context) error {
	list, err := m.repo.LoadTables(ctx)
	if err != nil {
		return fmt.Errorf("tables: load: %w", err)
	}
	_, err = m.Dispatch(ctx, Load{Tables: list})
	return err
}

// OnChange registers fn to be called with a snapshot after every dispatch.
// Calls are never concurrent and arrive in dispatch order; fn must not
// dispatch itself.
func (m *Manager) OnChange(fn func([]models.TableSession)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Dispatch applies cmd and persists the new list. On a persistence error the
// in-memory list keeps the new state and the error is returned.
func (m *Manager) Dispatch(ctx context.Context, cmd Command) ([]models.TableSession, error) {
	if t, ok := cmd.(Transfer); ok && t.From == t.To {
		return m.Tables(), nil
	}

	m.mu.Lock()
	m.tables = Apply(m.tables, cmd, m.now())
	snapshot := models.CloneTables(m.tables)
	err := m.repo.SaveTables(ctx, m.tables)
	listeners := append([]func([]models.TableSession){}, m.listeners...)
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	m.log.Debug("applied command", zap.String("kind", cmd.Kind()), zap.Any("command", cmd))
	if err != nil {
		m.log.Error("failed to persist tables", zap.String("kind", cmd.Kind()), zap.Error(err))
		err = fmt.Errorf("tables: persist after %s: %w", cmd.Kind(), err)
	}

	for _, fn := range listeners {
		fn(models.CloneTables(snapshot))
	}
	return snapshot, err
}

func (m *Manager) Tables() []models.TableSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneTables(m.tables)
}

func (m *Manager) Table(id string) (models.TableSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return models.TableSession{}, fmt.Errorf("%w: %s", ErrTableNotFound, id)
}

// Now is the manager's clock, shared with projections of its tables.
func (m *Manager) Now() time.Time {
	return m.now()
}

func (m *Manager) Start(ctx context.Context, id string, cfg models.GamingConfig) error {
	_, err := m.Dispatch(ctx, Start{TableID: id, Config: cfg})
	return err
}

func (m *Manager) Pause(ctx context.Context, id string) error {
	_, err := m.Dispatch(ctx, Pause{TableID: id})
	return err
}

func (m *Manager) Resume(ctx context.Context, id string) error {
	_, err := m.Dispatch(ctx, Resume{TableID: id})
	return err
}

func (m *Manager) Stop(ctx context.Context, id string) error {
	_, err := m.Dispatch(ctx, Stop{TableID: id})
	return err
}

func (m *Manager) Reset(ctx context.Context, id string) error {
	_, err := m.Dispatch(ctx, Reset{TableID: id})
	return err
}

func (m *Manager) AddProduct(ctx context.Context, id string, p models.Product) error {
	_, err := m.Dispatch(ctx, AddProduct{TableID: id, Product: p})
	return err
}

func (m *Manager) RemoveProduct(ctx context.Context, id, productID string) error {
	_, err := m.Dispatch(ctx, RemoveProduct{TableID: id, ProductID: productID})
	return err
}

func (m *Manager) Transfer(ctx context.Context, from, to string) error {
	_, err := m.Dispatch(ctx, Transfer{From: from, To: to})
	return err
}

// AddTable appends a new idle table and returns it.
func (m *Manager) AddTable(ctx context.Context) (models.TableSession, error) {
	tables, err := m.Dispatch(ctx, AddTable{})
	return tables[len(tables)-1], err
}

func (m *Manager) DeleteTable(ctx context.Context, id string) error {
	_, err := m.Dispatch(ctx, DeleteTable{TableID: id})
	return err
}

func (m *Manager) Rename(ctx context.Context, id, name string) error {
	_, err := m.Dispatch(ctx, Rename{TableID: id, Name: name})
	return err
}
