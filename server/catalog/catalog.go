// Package catalog keeps the counter's product list.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/storage"
)

const StorageKey = "cafe-products"

var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrInvalidProduct  = errors.New("catalog: invalid product")
)

func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Kola", Price: decimal.NewFromInt(20)},
		{ID: "2", Name: "Cips", Price: decimal.NewFromInt(25)},
		{ID: "3", Name: "Çay", Price: decimal.NewFromInt(10)},
		{ID: "4", Name: "Kahve", Price: decimal.NewFromInt(15)},
		{ID: "5", Name: "Su", Price: decimal.NewFromInt(5)},
		{ID: "6", Name: "Salam", Price: decimal.NewFromInt(22)},
	}
}

type Store struct {
	kv    storage.KV
	log   *zap.Logger
	newID func() string

	mu       sync.RWMutex
	products []models.Product
}

func NewStore(kv storage.KV, log *zap.Logger) *Store {
	return &Store{
		kv:    kv,
		log:   log.Named("catalog"),
		newID: uuid.NewString,
	}
}

// Load reads the persisted catalog, falling back to DefaultProducts when
// nothing usable is stored.
func (s *Store) Load(ctx context.Context) error {
	var products []models.Product
	if _, err := storage.LoadJSON(ctx, s.kv, s.log, StorageKey, &products, DefaultProducts); err != nil {
		return err
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return nil
}

// Add appends p, assigning a fresh id when p has none. Duplicate ids are
// accepted.
func (s *Store) Add(ctx context.Context, p models.Product) (models.Product, error) {
	if err := validate(p); err != nil {
		return models.Product{}, err
	}
	if p.ID == "" {
		p.ID = s.newID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	return p, s.persist(ctx)
}

// Update replaces every product whose id matches p.ID.
func (s *Store) Update(ctx context.Context, p models.Product) error {
	if err := validate(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrProductNotFound, p.ID)
	}
	return s.persist(ctx)
}

// Remove drops every product with the given id. Removing an unknown id is a
// no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = slices.DeleteFunc(s.products, func(p models.Product) bool { return p.ID == id })
	return s.persist(ctx)
}

func (s *Store) Get(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Store) List() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *Store) persist(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.kv, StorageKey, s.products); err != nil {
		s.log.Error("failed to persist catalog", zap.Error(err))
		return err
	}
	return nil
}

func validate(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}
