package restaurant

import (
	"context"
	"sync"

	"restopos/internal/policy"
)

// Provider is what the order and table services need from the tenant
// configuration: the active tracking mode and the default tax rates.
type Provider interface {
	Mode() policy.Mode
	DefaultRates() (sgst, cgst float64)
}

// Service caches the tenant settings so policy checks never block on
// the network. Load must run once at startup; Reload picks up admin
// changes.
type Service struct {
	repo Repository

	mu       sync.RWMutex
	settings Settings
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Load(ctx context.Context) error {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = *settings
	s.mu.Unlock()
	return nil
}

func (s *Service) Mode() policy.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return policy.Mode{TrackingEnabled: s.settings.EnableOrderStatusTracking}
}

func (s *Service) DefaultRates() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.DefaultSGSTRate, s.settings.DefaultCGSTRate
}

func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}
