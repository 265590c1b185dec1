// Package memory is an in-process report store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"nippo/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Report
}

// New returns a store holding seed in order. It panics if a seed report is
// invalid.
func New(seed ...core.Report) *Store {
	s := &Store{}
	for _, r := range seed {
		if _, err := s.Create(context.Background(), r); err != nil {
			panic(fmt.Sprintf("memory: invalid seed report %+v: %v", r, err))
		}
	}
	return s
}

// Create stores the report under a fresh ID.
func (s *Store) Create(_ context.Context, r core.Report) (core.Report, error) {
	if err := r.Validate(); err != nil {
		return core.Report{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	s.items = append(s.items, clone(r))
	return clone(r), nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Report{}, fmt.Errorf("get report %d: %w", id, core.ErrNotFound)
	}
	return clone(s.items[i]), nil
}

func (s *Store) ListAll(_ context.Context) ([]core.Report, error) {
	s.mu.Lock()
	out := s.snapshot()
	s.mu.Unlock()
	core.SortByDateDesc(out)
	return out, nil
}

// ListInRange returns reports dated within [start, end], both ISO dates.
func (s *Store) ListInRange(_ context.Context, start, end string) ([]core.Report, error) {
	from, err := core.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("list reports %s..%s: %w", start, end, err)
	}
	to, err := core.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("list reports %s..%s: %w", start, end, err)
	}

	s.mu.Lock()
	out := s.snapshot()
	s.mu.Unlock()
	return core.FilterWindow(out, core.DateRange{Start: from, End: to}), nil
}

func (s *Store) Update(_ context.Context, r core.Report) (core.Report, error) {
	if err := r.Validate(); err != nil {
		return core.Report{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(r.ID)
	if i < 0 {
		return core.Report{}, fmt.Errorf("update report %d: %w", r.ID, core.ErrNotFound)
	}
	s.items[i] = clone(r)
	return clone(r), nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete report %d: %w", id, core.ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Len returns the number of stored reports.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []core.Report {
	out := make([]core.Report, len(s.items))
	for i, r := range s.items {
		out[i] = clone(r)
	}
	return out
}

// clone copies the optional fields so callers cannot alias stored strings.
func clone(r core.Report) core.Report {
	r.Progress = copyPtr(r.Progress)
	r.Memo = copyPtr(r.Memo)
	r.Challenges = copyPtr(r.Challenges)
	r.NextPlan = copyPtr(r.NextPlan)
	return r
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
