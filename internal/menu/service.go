package menu

import (
	"context"

	"restopos/internal/store"
)

// Service owns the local menu collection. Menu CRUD itself lives on the
// server; locally the collection exists so price snapshots and realtime
// menu updates have somewhere coherent to land.
type Service struct {
	repo Repository
	coll *store.Collection[*Item]
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		coll: store.NewCollection[*Item](),
	}
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	if s.coll.Len() == 0 {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.coll.List(), nil
}

func (s *Service) Get(id uint) (*Item, bool) {
	return s.coll.Get(id)
}

func (s *Service) Refresh(ctx context.Context) error {
	items, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	s.coll.Replace(items)
	return nil
}

// ApplyRemote lands a pushed menu item; true when it was newly added.
func (s *Service) ApplyRemote(item *Item) bool {
	return s.coll.Upsert(item)
}

func (s *Service) RemoveLocal(id uint) bool {
	return s.coll.Remove(id)
}

// Local returns the collection without touching the network.
func (s *Service) Local() []*Item {
	return s.coll.List()
}
