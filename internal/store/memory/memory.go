// Package memory provides an in-memory Store used by unit tests and the
// dev-mode server. It mirrors the SQL backends' behavior, including the
// ErrNotFound translation and the sweep range deletes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
)

// Store is a mutex-guarded in-memory implementation of store.Store.
type Store struct {
	mu     sync.RWMutex
	status model.ShowerStatus
	slots  map[string]model.Slot
	logs   map[model.LogStream][]model.LogEntry
	subs   map[string]model.PushSubscription
	newID  func() string
}

// New returns an empty memory store.
func New() *Store {
	return &Store{
		slots: make(map[string]model.Slot),
		logs:  make(map[model.LogStream][]model.LogEntry),
		subs:  make(map[string]model.PushSubscription),
		newID: func() string { return uuid.New().String() },
	}
}

// WithIDGenerator overrides slot and log entry ID assignment, letting tests
// produce stable identifiers.
func (s *Store) WithIDGenerator(gen func() string) *Store {
	if gen != nil {
		s.newID = gen
	}
	return s
}

func (s *Store) Status() store.Status               { return (*statusStore)(s) }
func (s *Store) Slots() store.Slots                 { return (*slotStore)(s) }
func (s *Store) Logs() store.Logs                   { return (*logStore)(s) }
func (s *Store) Subscriptions() store.Subscriptions { return (*subStore)(s) }

type statusStore Store

func (s *statusStore) Get(ctx context.Context) (model.ShowerStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, nil
}

func (s *statusStore) Set(ctx context.Context, status model.ShowerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return nil
}

type slotStore Store

func (s *slotStore) Create(ctx context.Context, slot model.Slot) (model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.ID == "" {
		slot.ID = s.newID()
	}
	s.slots[slot.ID] = slot
	return slot, nil
}

func (s *slotStore) Get(ctx context.Context, id string) (model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return model.Slot{}, store.ErrNotFound
	}
	return slot, nil
}

func (s *slotStore) List(ctx context.Context) ([]model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *slotStore) Update(ctx context.Context, slot model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[slot.ID]; !ok {
		return store.ErrNotFound
	}
	s.slots[slot.ID] = slot
	return nil
}

func (s *slotStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.slots, id)
	return nil
}

func (s *slotStore) DeleteDatedThrough(ctx context.Context, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, slot := range s.slots {
		if !slot.Recurring && slot.Date <= date {
			delete(s.slots, id)
			removed++
		}
	}
	return removed, nil
}

type logStore Store

func (s *logStore) Append(ctx context.Context, stream model.LogStream, entry model.LogEntry) (model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	s.logs[stream] = append(s.logs[stream], entry)
	return entry, nil
}

func (s *logStore) List(ctx context.Context, stream model.LogStream) ([]model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.logs[stream]
	out := make([]model.LogEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	return out, nil
}

func (s *logStore) DeleteEndedBefore(ctx context.Context, stream model.LogStream, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.logs[stream][:0]
	removed := 0
	for _, entry := range s.logs[stream] {
		if entry.EndedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	s.logs[stream] = kept
	return removed, nil
}

type subStore Store

func (s *subStore) Put(ctx context.Context, sub model.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.Key] = sub
	return nil
}

func (s *subStore) List(ctx context.Context) ([]model.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PushSubscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *subStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.subs, key)
	return nil
}
