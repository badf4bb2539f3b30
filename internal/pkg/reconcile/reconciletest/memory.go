// Package reconciletest provides an in-memory reconcile.Store for tests.
package reconciletest

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile"
)

// MemoryStore keeps rows by id. Rows are copied in and out so callers never
// share memory with the store.
type MemoryStore[M any, PM interface {
	*M
	reconcile.Record
}] struct {
	mu     sync.Mutex
	rows   map[uint]M
	nextID uint

	// FailWrite, when set, is consulted before every insert or update.
	FailWrite func(rec PM) error

	Finds   int
	Inserts int
	Updates int
}

func NewMemoryStore[M any, PM interface {
	*M
	reconcile.Record
}]() *MemoryStore[M, PM] {
	return &MemoryStore[M, PM]{rows: make(map[uint]M)}
}

func (s *MemoryStore[M, PM]) FindOne(_ context.Context, key map[string]any) (PM, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Finds++

	for _, id := range s.sortedIDs() {
		row := s.rows[id]
		if reflect.DeepEqual(PM(&row).LookupKey(), key) {
			return PM(&row), true, nil
		}
	}
	return nil, false, nil
}

func (s *MemoryStore[M, PM]) Insert(_ context.Context, rec PM) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrite != nil {
		if err := s.FailWrite(rec); err != nil {
			return 0, err
		}
	}
	s.Inserts++
	s.nextID++
	rec.SetID(s.nextID)
	s.rows[s.nextID] = *rec
	return s.nextID, nil
}

func (s *MemoryStore[M, PM]) Update(_ context.Context, id uint, rec PM) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrite != nil {
		if err := s.FailWrite(rec); err != nil {
			return err
		}
	}
	s.Updates++
	rec.SetID(id)
	s.rows[id] = *rec
	return nil
}

// Seed stores rows directly, assigning ids.
func (s *MemoryStore[M, PM]) Seed(recs ...PM) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		s.nextID++
		rec.SetID(s.nextID)
		s.rows[s.nextID] = *rec
	}
}

// Rows returns a copy of all rows ordered by id.
func (s *MemoryStore[M, PM]) Rows() []M {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]M, 0, len(s.rows))
	for _, id := range s.sortedIDs() {
		out = append(out, s.rows[id])
	}
	return out
}

// Calls is the total number of store operations performed.
func (s *MemoryStore[M, PM]) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Finds + s.Inserts + s.Updates
}

func (s *MemoryStore[M, PM]) sortedIDs() []uint {
	ids := make([]uint, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
