// Package store defines the persistence ports consumed by the scheduling
// core, so the services can be exercised against in-memory fakes and the
// PocketBase-backed implementation interchangeably.
package store

import (
	"context"
	"errors"
	"time"

	"church-system/models"
)

// ErrNotFound is returned when a referenced event id does not exist.
var ErrNotFound = errors.New("event not found")

// EventFilter narrows ListEvents results. Zero values mean "no constraint".
type EventFilter struct {
	Status     string
	DateBefore time.Time // exclusive upper bound on event_date
	ParentID   string
}

// EventPatch carries a partial update; nil fields are left untouched.
type EventPatch struct {
	Status      *string
	IsRecurring *bool
}

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error)

	// CountChildren returns the number of occurrences attributed to rootID.
	CountChildren(ctx context.Context, rootID string) (int, error)

	// OccurrenceExists reports whether an occurrence with the given
	// (root, date) pair has already been materialized.
	OccurrenceExists(ctx context.Context, rootID string, date time.Time) (bool, error)

	InsertEvent(ctx context.Context, event *models.Event) (*models.Event, error)

	// InsertEvents bulk-persists the staged occurrences. A row that
	// collides with the (parent_event, event_date) uniqueness guarantee is
	// skipped, not fatal; the inserted rows are returned.
	InsertEvents(ctx context.Context, events []*models.Event) ([]*models.Event, error)

	UpdateEvent(ctx context.Context, id string, patch EventPatch) (*models.Event, error)

	// CompleteIfScheduled atomically moves the event from "scheduled" to
	// "completed". It reports false when the event was not claimable
	// (missing or already terminal), so overlapping sweeps cannot complete
	// the same event twice.
	CompleteIfScheduled(ctx context.Context, id string) (bool, error)

	// CancelScheduledChildren cancels the still-pending occurrences of a
	// series and returns how many rows were touched. Completed children
	// are left untouched.
	CancelScheduledChildren(ctx context.Context, rootID string) (int, error)
}

type AssetStore interface {
	ListAssetRefs(ctx context.Context, eventID string) ([]models.AssetRef, error)
	InsertAssetRefs(ctx context.Context, eventID string, refs []models.AssetRef) error
}
