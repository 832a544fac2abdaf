package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// InMemoryStore is a generic map backed store used by the in-memory repositories
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	// seq keeps insertion order so listings are deterministic
	seq  map[string]int64
	next int64
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
		seq:   make(map[string]int64),
	}
}

func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	s.seq[id] = s.next
	s.next++
	return nil
}

// CreateUnique inserts item unless conflict reports an error for an existing
// item, emulating unique constraints atomically
func (s *InMemoryStore[T]) CreateUnique(ctx context.Context, id string, item T, conflict func(existing T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrAlreadyExists)
	}
	for _, existing := range s.items {
		if err := conflict(existing); err != nil {
			return err
		}
	}
	s.items[id] = item
	s.seq[id] = s.next
	s.next++
	return nil
}

func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, ierr.NewError("item not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

func (s *InMemoryStore[T]) Update(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewError("item not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewError("item not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	delete(s.items, id)
	delete(s.seq, id)
	return nil
}

// Mutate runs fn on the stored item under the write lock. fn must leave the
// item untouched when it returns an error.
func (s *InMemoryStore[T]) Mutate(ctx context.Context, id string, fn func(item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return ierr.NewError("item not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return fn(item)
}

// MutateFirst is Mutate for the first item accepted by match. Returns
// ErrNotFound when nothing matches.
func (s *InMemoryStore[T]) MutateFirst(ctx context.Context, match func(item T) bool, fn func(item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if match(item) {
			return fn(item)
		}
	}
	return ierr.NewError("item not found").
		Mark(ierr.ErrNotFound)
}

// MutateAll runs fn over every item under the write lock and returns how many
// items fn reported as changed
func (s *InMemoryStore[T]) MutateAll(ctx context.Context, fn func(item T) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for _, item := range s.items {
		if fn(item) {
			changed++
		}
	}
	return changed
}

// List returns the items accepted by filterFn, ordered by sortFn when given
func (s *InMemoryStore[T]) List(
	ctx context.Context,
	filter interface{},
	filterFn func(ctx context.Context, item T, filter interface{}) bool,
	sortFn func(i, j T) bool,
) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return s.seq[ids[i]] < s.seq[ids[j]] })

	result := make([]T, 0, len(ids))
	for _, id := range ids {
		item := s.items[id]
		if filterFn == nil || filterFn(ctx, item, filter) {
			result = append(result, item)
		}
	}

	if sortFn != nil {
		sort.SliceStable(result, func(i, j int) bool {
			return sortFn(result[i], result[j])
		})
	}
	return result, nil
}

// Find returns the first item accepted by match
func (s *InMemoryStore[T]) Find(ctx context.Context, match func(item T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.seq = make(map[string]int64)
	s.next = 0
}

// visible mirrors the tenant and status scoping of the SQL repositories
func visible(ctx context.Context, base types.BaseModel) bool {
	return base.TenantID == types.GetTenantID(ctx) && base.Status == types.StatusPublished
}

// paginate applies limit and offset from a query filter
func paginate[T any](items []T, f *types.QueryFilter) []T {
	if f == nil || f.IsUnlimited() {
		return items
	}
	offset := f.GetOffset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + f.GetLimit()
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func notFound(entity, id string) error {
	return ierr.NewError(entity + " not found").
		WithHintf("%s %s was not found", entity, id).
		WithReportableDetails(map[string]any{
			"entity": entity,
			"id":     id,
		}).
		Mark(ierr.ErrNotFound)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
