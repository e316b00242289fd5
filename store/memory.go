package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"church-system/models"
)

// MemoryEventStore is an in-memory EventStore used by tests and local
// experiments. It mirrors the behavior of the PocketBase-backed store,
// including the (parent_event, event_date) uniqueness skip on bulk insert.
type MemoryEventStore struct {
	mu     sync.Mutex
	events map[string]*models.Event
	nextID int
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{events: map[string]*models.Event{}}
}

// Seed inserts an event as-is, assigning an id when missing. Test helper.
func (s *MemoryEventStore) Seed(event *models.Event) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = s.generateID()
	}
	clone := *event
	s.events[event.ID] = &clone
	return event
}

func (s *MemoryEventStore) generateID() string {
	s.nextID++
	return fmt.Sprintf("evt%03d", s.nextID)
}

func (s *MemoryEventStore) GetEvent(_ context.Context, id string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (s *MemoryEventStore) ListEvents(_ context.Context, filter EventFilter) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Event
	for _, event := range s.events {
		if filter.Status != "" && event.Status != filter.Status {
			continue
		}
		if !filter.DateBefore.IsZero() && !event.EventDate.Before(filter.DateBefore) {
			continue
		}
		if filter.ParentID != "" && event.ParentEventID != filter.ParentID {
			continue
		}
		clone := *event
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EventDate.Before(result[j].EventDate)
	})
	return result, nil
}

func (s *MemoryEventStore) CountChildren(_ context.Context, rootID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, event := range s.events {
		if event.ParentEventID == rootID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryEventStore) OccurrenceExists(_ context.Context, rootID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occurrenceExistsLocked(rootID, date), nil
}

func (s *MemoryEventStore) occurrenceExistsLocked(rootID string, date time.Time) bool {
	for _, event := range s.events {
		if event.ParentEventID == rootID && event.EventDate.Equal(date) {
			return true
		}
	}
	return false
}

func (s *MemoryEventStore) InsertEvent(_ context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ParentEventID != "" && s.occurrenceExistsLocked(event.ParentEventID, event.EventDate) {
		return nil, errors.New("UNIQUE constraint failed: idx_events_parent_date")
	}
	clone := *event
	clone.ID = s.generateID()
	s.events[clone.ID] = &clone
	returned := clone
	return &returned, nil
}

func (s *MemoryEventStore) InsertEvents(_ context.Context, events []*models.Event) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var inserted []*models.Event
	for _, event := range events {
		if event.ParentEventID != "" && s.occurrenceExistsLocked(event.ParentEventID, event.EventDate) {
			continue
		}
		clone := *event
		clone.ID = s.generateID()
		s.events[clone.ID] = &clone
		returned := clone
		inserted = append(inserted, &returned)
	}
	return inserted, nil
}

func (s *MemoryEventStore) UpdateEvent(_ context.Context, id string, patch EventPatch) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Status != nil {
		event.Status = *patch.Status
	}
	if patch.IsRecurring != nil {
		event.IsRecurring = *patch.IsRecurring
	}
	clone := *event
	return &clone, nil
}

func (s *MemoryEventStore) CompleteIfScheduled(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok || event.Status != models.StatusScheduled {
		return false, nil
	}
	event.Status = models.StatusCompleted
	return true, nil
}

func (s *MemoryEventStore) CancelScheduledChildren(_ context.Context, rootID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, event := range s.events {
		if event.ParentEventID == rootID && event.Status == models.StatusScheduled {
			event.Status = models.StatusCancelled
			count++
		}
	}
	return count, nil
}

// MemoryAssetStore is the in-memory AssetStore counterpart. InsertErr, when
// set, makes every insert fail; tests use it to exercise the best-effort
// asset-copy path.
type MemoryAssetStore struct {
	mu        sync.Mutex
	refs      map[string][]models.AssetRef
	InsertErr error
}

func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{refs: map[string][]models.AssetRef{}}
}

func (s *MemoryAssetStore) SetRefs(eventID string, refs []models.AssetRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[eventID] = append([]models.AssetRef(nil), refs...)
}

func (s *MemoryAssetStore) ListAssetRefs(_ context.Context, eventID string) ([]models.AssetRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AssetRef(nil), s.refs[eventID]...), nil
}

func (s *MemoryAssetStore) InsertAssetRefs(_ context.Context, eventID string, refs []models.AssetRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.refs[eventID] = append(s.refs[eventID], refs...)
	return nil
}
