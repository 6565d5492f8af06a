package table

import (
	"context"
	"fmt"
	"sync"

	"restopos/internal/apperr"
	"restopos/internal/logger"
	"restopos/internal/notify"
	"restopos/internal/store"

	"go.uber.org/zap"
)

const cacheKey = "tables"

// Service owns the table collection and implements the multi-step
// operations (merge, split, status change) optimistically: snapshot,
// apply locally, persist, and roll back to the snapshot if the server
// says no.
type Service interface {
	Merge(ctx context.Context, ids []uint) error
	Split(ctx context.Context, id uint, newCapacity int) (*Table, error)
	SetStatus(ctx context.Context, id uint, status Status) (*Table, error)
	Clear(ctx context.Context, id uint) (*Table, error)
	Add(ctx context.Context, t *Table) (*Table, error)

	Get(id uint) (*Table, bool)
	List(ctx context.Context) ([]*Table, error)
	Refresh(ctx context.Context) error

	// Realtime hooks.
	ApplyRemote(t *Table) bool
	RemoveLocal(id uint) bool
	Local() []*Table
}

type service struct {
	repo     Repository
	reporter notify.Reporter
	coll     *store.Collection[*Table]
	cache    *store.Cache
}

func NewService(repo Repository, reporter notify.Reporter, cache *store.Cache) Service {
	return &service{
		repo:     repo,
		reporter: reporter,
		coll:     store.NewCollection[*Table](),
		cache:    cache,
	}
}

// Merge combines tables under ids[0] as the main table. The main update
// is persisted first, then the secondaries in parallel; any failure
// restores every affected table from the snapshot.
func (s *service) Merge(ctx context.Context, ids []uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MergeTables"),
		zap.Uints("table_ids", ids),
	)

	if len(ids) < 2 {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, ErrTooFewTables)
	}

	tables := make([]*Table, 0, len(ids))
	totalCapacity := 0
	for _, id := range ids {
		t, ok := s.coll.Get(id)
		if !ok {
			return fmt.Errorf("%w: %v: %d", apperr.ErrNotFound, ErrTableNotFound, id)
		}
		tables = append(tables, t)
		totalCapacity += t.Capacity
	}

	snap := s.coll.Snapshot(ids...)

	mainID := ids[0]
	main := tables[0].Clone()
	main.Capacity = totalCapacity
	main.MergedWith = append([]uint(nil), ids[1:]...)
	s.coll.Upsert(main)

	secondaries := make([]*Table, 0, len(tables)-1)
	for _, t := range tables[1:] {
		sec := t.Clone()
		sec.Status = StatusOccupied
		sec.MergedWith = []uint{mainID}
		s.coll.Upsert(sec)
		secondaries = append(secondaries, sec)
	}

	if _, err := s.repo.Update(ctx, main); err != nil {
		log.Error("failed to persist main table", zap.Error(err))
		s.coll.RestoreSnapshot(snap)
		s.reporter.Failure("Failed to merge tables")
		return err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, sec := range secondaries {
		wg.Add(1)
		go func(t *Table) {
			defer wg.Done()
			if _, err := s.repo.Update(ctx, t); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(sec)
	}
	wg.Wait()

	if firstErr != nil {
		log.Error("failed to persist secondary table", zap.Error(firstErr))
		s.coll.RestoreSnapshot(snap)
		s.reporter.Failure("Failed to merge tables")
		return firstErr
	}

	// Server-assigned invariants (numbering, group bookkeeping) win.
	if err := s.Refresh(ctx); err != nil {
		log.Warn("post-merge refetch failed", zap.Error(err))
	}

	s.reporter.Success(fmt.Sprintf("Merged %d tables", len(ids)))
	return nil
}

// Split carves newCapacity seats off an existing table into a new one.
// The shrink and create calls run concurrently and are treated as one
// logical transaction: a partial failure is compensated so the server
// never keeps only half the split.
func (s *service) Split(ctx context.Context, id uint, newCapacity int) (*Table, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SplitTable"),
		zap.Uint("table_id", id),
		zap.Int("new_capacity", newCapacity),
	)

	orig, ok := s.coll.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %v: %d", apperr.ErrNotFound, ErrTableNotFound, id)
	}
	if newCapacity <= 0 || newCapacity >= orig.Capacity {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, ErrInvalidCapacity)
	}

	nextNumber := 0
	for _, t := range s.coll.List() {
		if t.TableNumber > nextNumber {
			nextNumber = t.TableNumber
		}
	}
	nextNumber++

	shrunk := orig.Clone()
	shrunk.Capacity -= newCapacity

	fresh := &Table{
		TableNumber: nextNumber,
		Capacity:    newCapacity,
		Status:      StatusAvailable,
		SplitFrom:   &orig.ID,
	}

	var (
		wg                   sync.WaitGroup
		updated, created     *Table
		updateErr, createErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		updated, updateErr = s.repo.Update(ctx, shrunk)
	}()
	go func() {
		defer wg.Done()
		created, createErr = s.repo.Create(ctx, fresh)
	}()
	wg.Wait()

	switch {
	case updateErr == nil && createErr == nil:
		s.coll.Upsert(updated)
		s.coll.Upsert(created)
		s.reporter.Success(fmt.Sprintf("Table %d split into table %d", orig.TableNumber, created.TableNumber))
		return created.Clone(), nil

	case updateErr == nil && createErr != nil:
		// Shrink landed but the new table didn't: grow the original back.
		if _, err := s.repo.Update(ctx, orig); err != nil {
			log.Error("split compensation failed, capacity lost on server", zap.Error(err))
		}
		s.reporter.Failure("Failed to split table")
		return nil, createErr

	case updateErr != nil && createErr == nil:
		// New table landed but the shrink didn't: remove it again.
		if err := s.repo.Delete(ctx, created.ID); err != nil {
			log.Error("split compensation failed, orphan table on server", zap.Error(err))
		}
		s.reporter.Failure("Failed to split table")
		return nil, updateErr

	default:
		s.reporter.Failure("Failed to split table")
		return nil, updateErr
	}
}

// SetStatus applies optimistically, then replaces the local entity with
// the server's response, or reverts on failure.
func (s *service) SetStatus(ctx context.Context, id uint, status Status) (*Table, error) {
	current, ok := s.coll.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %v: %d", apperr.ErrNotFound, ErrTableNotFound, id)
	}

	snap := s.coll.Snapshot(id)

	optimistic := current.Clone()
	optimistic.Status = status
	s.coll.Upsert(optimistic)

	updated, err := s.repo.Update(ctx, optimistic)
	if err != nil {
		s.coll.RestoreSnapshot(snap)
		s.reporter.Failure("Failed to update table status")
		return nil, err
	}

	s.coll.Upsert(updated)
	return updated.Clone(), nil
}

// Clear resets a table for cleaning once its dine-in order reaches a
// terminal state.
func (s *service) Clear(ctx context.Context, id uint) (*Table, error) {
	current, ok := s.coll.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %v: %d", apperr.ErrNotFound, ErrTableNotFound, id)
	}

	cleared := current.Clone()
	cleared.Status = StatusCleaning
	cleared.CurrentOrderID = nil
	cleared.MergedWith = nil
	cleared.SplitFrom = nil

	updated, err := s.repo.Update(ctx, cleared)
	if err != nil {
		s.reporter.Failure("Failed to clear table")
		return nil, err
	}

	s.coll.Upsert(updated)
	s.reporter.Success(fmt.Sprintf("Table %d is being cleaned", updated.TableNumber))
	return updated.Clone(), nil
}

func (s *service) Add(ctx context.Context, t *Table) (*Table, error) {
	if t.Capacity <= 0 {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, ErrInvalidCapacity)
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		s.reporter.Failure("Failed to add table")
		return nil, err
	}

	s.coll.Upsert(created)
	s.reporter.Success(fmt.Sprintf("Table %d added", created.TableNumber))
	return created.Clone(), nil
}

func (s *service) Get(id uint) (*Table, bool) {
	return s.coll.Get(id)
}

func (s *service) List(ctx context.Context) ([]*Table, error) {
	if _, _, ok := s.cache.Get(cacheKey); ok {
		go func() {
			if err := s.Refresh(context.Background()); err != nil {
				logger.L().Warn("background table refresh failed", zap.Error(err))
			}
		}()
		return s.coll.List(), nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.coll.List(), nil
}

func (s *service) Refresh(ctx context.Context) error {
	tables, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	s.coll.Replace(tables)
	s.cache.Put(cacheKey, s.coll.List())
	return nil
}

func (s *service) ApplyRemote(t *Table) bool {
	return s.coll.Upsert(t)
}

func (s *service) RemoveLocal(id uint) bool {
	return s.coll.Remove(id)
}

func (s *service) Local() []*Table {
	return s.coll.List()
}
