// Package pricing keeps the hourly rate for every console/controller tier.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/storage"
)

const StorageKey = "cafe-pricing-rules"

// DefaultHourlyRate applies when no rule matches a tier.
var DefaultHourlyRate = decimal.NewFromInt(100)

var ErrRuleNotFound = errors.New("pricing: rule not found")

func DefaultRules() []models.PricingRule {
	rule := func(m models.PSModel, c models.ControllerCount, rate int64) models.PricingRule {
		return models.PricingRule{ID: models.RuleID(m, c), PSModel: m, ControllerCount: c, HourlyRate: decimal.NewFromInt(rate)}
	}
	return []models.PricingRule{
		rule(models.PS3, models.TwoControllers, 80),
		rule(models.PS3, models.FourControllers, 120),
		rule(models.PS4, models.TwoControllers, 100),
		rule(models.PS4, models.FourControllers, 150),
		rule(models.PS5, models.TwoControllers, 130),
		rule(models.PS5, models.FourControllers, 180),
	}
}

type tier struct {
	model models.PSModel
	count models.ControllerCount
}

type Store struct {
	kv  storage.KV
	log *zap.Logger

	mu    sync.RWMutex
	rules []models.PricingRule
	// index holds the first rule per tier, rebuilt on every write.
	index map[tier]models.PricingRule
}

func NewStore(kv storage.KV, log *zap.Logger) *Store {
	return &Store{kv: kv, log: log.Named("pricing")}
}

func (s *Store) Load(ctx context.Context) error {
	var rules []models.PricingRule
	if _, err := storage.LoadJSON(ctx, s.kv, s.log, StorageKey, &rules, DefaultRules); err != nil {
		return err
	}

	s.mu.Lock()
	s.rules = rules
	s.reindex()
	s.mu.Unlock()
	return nil
}

// Update replaces the rule with the same id.
func (s *Store) Update(ctx context.Context, rule models.PricingRule) error {
	if rule.HourlyRate.IsNegative() {
		return fmt.Errorf("pricing: hourly rate must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = rule
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, rule.ID)
	}
	s.reindex()

	if err := storage.SaveJSON(ctx, s.kv, StorageKey, s.rules); err != nil {
		s.log.Error("failed to persist pricing rules", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Rule(model models.PSModel, count models.ControllerCount) (models.PricingRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.index[tier{model, count}]
	return r, ok
}

// HourlyRate returns the matching rule's rate or DefaultHourlyRate.
func (s *Store) HourlyRate(model models.PSModel, count models.ControllerCount) decimal.Decimal {
	if r, ok := s.Rule(model, count); ok {
		return r.HourlyRate
	}
	return DefaultHourlyRate
}

// Config snapshots the current rate for a new session.
func (s *Store) Config(model models.PSModel, count models.ControllerCount) models.GamingConfig {
	return models.GamingConfig{
		PSModel:         model,
		ControllerCount: count,
		HourlyRate:      s.HourlyRate(model, count),
	}
}

func (s *Store) List() []models.PricingRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rules)
}

func (s *Store) reindex() {
	s.index = make(map[tier]models.PricingRule, len(s.rules))
	for _, r := range s.rules {
		k := tier{r.PSModel, r.ControllerCount}
		if _, ok := s.index[k]; !ok {
			s.index[k] = r
		}
	}
}
