package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"church-system/models"
)

const (
	collectionEvents      = "events"
	collectionEventImages = "event_images"
)

// PBEventStore implements EventStore on top of the PocketBase record APIs.
// The conditional status claim and the cascade cancel go through dbx
// directly so they execute as single UPDATE statements.
type PBEventStore struct {
	app core.App
}

func NewPBEventStore(app core.App) *PBEventStore {
	return &PBEventStore{app: app}
}

func (s *PBEventStore) GetEvent(_ context.Context, id string) (*models.Event, error) {
	record, err := s.app.FindRecordById(collectionEvents, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return eventFromRecord(record), nil
}

func (s *PBEventStore) ListEvents(_ context.Context, filter EventFilter) ([]*models.Event, error) {
	var exprs []string
	params := dbx.Params{}
	if filter.Status != "" {
		exprs = append(exprs, "status = {:status}")
		params["status"] = filter.Status
	}
	if !filter.DateBefore.IsZero() {
		exprs = append(exprs, "event_date < {:before}")
		params["before"] = dateTimeString(filter.DateBefore)
	}
	if filter.ParentID != "" {
		exprs = append(exprs, "parent_event = {:parent}")
		params["parent"] = filter.ParentID
	}

	var records []*core.Record
	var err error
	if len(exprs) == 0 {
		records, err = s.app.FindAllRecords(collectionEvents)
	} else {
		records, err = s.app.FindRecordsByFilter(
			collectionEvents,
			strings.Join(exprs, " && "),
			"event_date",
			0,
			0,
			params,
		)
	}
	if err != nil {
		return nil, err
	}

	events := make([]*models.Event, 0, len(records))
	for _, record := range records {
		events = append(events, eventFromRecord(record))
	}
	return events, nil
}

func (s *PBEventStore) CountChildren(_ context.Context, rootID string) (int, error) {
	total, err := s.app.CountRecords(collectionEvents, dbx.HashExp{"parent_event": rootID})
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (s *PBEventStore) OccurrenceExists(_ context.Context, rootID string, date time.Time) (bool, error) {
	total, err := s.app.CountRecords(collectionEvents, dbx.HashExp{
		"parent_event": rootID,
		"event_date":   dateTimeString(date),
	})
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (s *PBEventStore) InsertEvent(_ context.Context, event *models.Event) (*models.Event, error) {
	collection, err := s.app.FindCollectionByNameOrId(collectionEvents)
	if err != nil {
		return nil, err
	}
	record := core.NewRecord(collection)
	applyEventFields(record, event)
	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return eventFromRecord(record), nil
}

func (s *PBEventStore) InsertEvents(_ context.Context, events []*models.Event) ([]*models.Event, error) {
	collection, err := s.app.FindCollectionByNameOrId(collectionEvents)
	if err != nil {
		return nil, err
	}

	var inserted []*models.Event
	err = s.app.RunInTransaction(func(txApp core.App) error {
		for _, event := range events {
			record := core.NewRecord(collection)
			applyEventFields(record, event)
			if err := txApp.Save(record); err != nil {
				// The partial unique index on (parent_event, event_date)
				// is the real duplicate guard; a colliding row was
				// materialized by a concurrent caller and is skipped.
				if isUniqueViolation(err) {
					continue
				}
				return err
			}
			inserted = append(inserted, eventFromRecord(record))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func (s *PBEventStore) UpdateEvent(_ context.Context, id string, patch EventPatch) (*models.Event, error) {
	record, err := s.app.FindRecordById(collectionEvents, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if patch.Status != nil {
		record.Set("status", *patch.Status)
	}
	if patch.IsRecurring != nil {
		record.Set("is_recurring", *patch.IsRecurring)
	}
	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return eventFromRecord(record), nil
}

func (s *PBEventStore) CompleteIfScheduled(_ context.Context, id string) (bool, error) {
	result, err := s.app.NonconcurrentDB().
		Update(
			collectionEvents,
			dbx.Params{"status": models.StatusCompleted},
			dbx.NewExp("id = {:id} AND status = {:status}", dbx.Params{
				"id":     id,
				"status": models.StatusScheduled,
			}),
		).
		Execute()
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *PBEventStore) CancelScheduledChildren(_ context.Context, rootID string) (int, error) {
	result, err := s.app.NonconcurrentDB().
		Update(
			collectionEvents,
			dbx.Params{"status": models.StatusCancelled},
			dbx.NewExp("parent_event = {:parent} AND status = {:status}", dbx.Params{
				"parent": rootID,
				"status": models.StatusScheduled,
			}),
		).
		Execute()
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// PBAssetStore implements AssetStore against the event_images collection.
type PBAssetStore struct {
	app core.App
}

func NewPBAssetStore(app core.App) *PBAssetStore {
	return &PBAssetStore{app: app}
}

func (s *PBAssetStore) ListAssetRefs(_ context.Context, eventID string) ([]models.AssetRef, error) {
	records, err := s.app.FindRecordsByFilter(
		collectionEventImages,
		"event = {:event}",
		"sort_order",
		0,
		0,
		dbx.Params{"event": eventID},
	)
	if err != nil {
		return nil, err
	}
	refs := make([]models.AssetRef, 0, len(records))
	for _, record := range records {
		refs = append(refs, models.AssetRef{
			URL:       record.GetString("url"),
			AltText:   record.GetString("alt_text"),
			SortOrder: record.GetInt("sort_order"),
		})
	}
	return refs, nil
}

func (s *PBAssetStore) InsertAssetRefs(_ context.Context, eventID string, refs []models.AssetRef) error {
	collection, err := s.app.FindCollectionByNameOrId(collectionEventImages)
	if err != nil {
		return err
	}
	return s.app.RunInTransaction(func(txApp core.App) error {
		for _, ref := range refs {
			record := core.NewRecord(collection)
			record.Set("event", eventID)
			record.Set("url", ref.URL)
			record.Set("alt_text", ref.AltText)
			record.Set("sort_order", ref.SortOrder)
			if err := txApp.Save(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func eventFromRecord(record *core.Record) *models.Event {
	return &models.Event{
		ID:              record.Id,
		Name:            record.GetString("name"),
		Description:     record.GetString("description"),
		Location:        record.GetString("location"),
		Capacity:        record.GetInt("capacity"),
		EventDate:       record.GetDateTime("event_date").Time(),
		IsRecurring:     record.GetBool("is_recurring"),
		RecurrenceRule:  record.GetString("recurrence_rule"),
		RecurrenceEnd:   record.GetDateTime("recurrence_end").Time(),
		RecurrenceCount: record.GetInt("recurrence_count"),
		ParentEventID:   record.GetString("parent_event"),
		Status:          record.GetString("status"),
	}
}

func applyEventFields(record *core.Record, event *models.Event) {
	record.Set("name", event.Name)
	record.Set("description", event.Description)
	record.Set("location", event.Location)
	record.Set("capacity", event.Capacity)
	record.Set("event_date", event.EventDate)
	record.Set("is_recurring", event.IsRecurring)
	record.Set("recurrence_rule", event.RecurrenceRule)
	if event.RecurrenceEnd.IsZero() {
		record.Set("recurrence_end", "")
	} else {
		record.Set("recurrence_end", event.RecurrenceEnd)
	}
	record.Set("recurrence_count", event.RecurrenceCount)
	record.Set("parent_event", event.ParentEventID)
	record.Set("status", event.Status)
}

func dateTimeString(t time.Time) string {
	dt, _ := types.ParseDateTime(t)
	return dt.String()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "validation_not_unique")
}
