package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-system/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 19, 0, 0, 0, time.UTC)
}

func TestMemoryEventStore_GetEventNotFound(t *testing.T) {
	s := NewMemoryEventStore()

	_, err := s.GetEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryEventStore_InsertEventRejectsDuplicateDate(t *testing.T) {
	s := NewMemoryEventStore()
	root := s.Seed(&models.Event{Name: "Bible Study", EventDate: day(1), Status: models.StatusScheduled})

	_, err := s.InsertEvent(context.Background(), &models.Event{
		Name: "Bible Study", EventDate: day(8), ParentEventID: root.ID, Status: models.StatusScheduled,
	})
	require.NoError(t, err)

	_, err = s.InsertEvent(context.Background(), &models.Event{
		Name: "Bible Study", EventDate: day(8), ParentEventID: root.ID, Status: models.StatusScheduled,
	})
	assert.Error(t, err)

	// two roots may share a date: the uniqueness guard is per series
	_, err = s.InsertEvent(context.Background(), &models.Event{
		Name: "Choir Practice", EventDate: day(1), Status: models.StatusScheduled,
	})
	assert.NoError(t, err)
}

func TestMemoryEventStore_InsertEventsSkipsCollisions(t *testing.T) {
	s := NewMemoryEventStore()
	root := s.Seed(&models.Event{Name: "Bible Study", EventDate: day(1), Status: models.StatusScheduled})
	s.Seed(&models.Event{Name: "Bible Study", EventDate: day(8), ParentEventID: root.ID, Status: models.StatusScheduled})

	inserted, err := s.InsertEvents(context.Background(), []*models.Event{
		{Name: "Bible Study", EventDate: day(8), ParentEventID: root.ID, Status: models.StatusScheduled},
		{Name: "Bible Study", EventDate: day(15), ParentEventID: root.ID, Status: models.StatusScheduled},
	})
	require.NoError(t, err)

	require.Len(t, inserted, 1)
	assert.True(t, day(15).Equal(inserted[0].EventDate))
}

func TestMemoryEventStore_ListEventsFilters(t *testing.T) {
	s := NewMemoryEventStore()
	root := s.Seed(&models.Event{Name: "a", EventDate: day(1), Status: models.StatusScheduled})
	s.Seed(&models.Event{Name: "b", EventDate: day(8), ParentEventID: root.ID, Status: models.StatusCompleted})
	s.Seed(&models.Event{Name: "c", EventDate: day(15), ParentEventID: root.ID, Status: models.StatusScheduled})

	scheduled, err := s.ListEvents(context.Background(), EventFilter{Status: models.StatusScheduled})
	require.NoError(t, err)
	assert.Len(t, scheduled, 2)

	overdue, err := s.ListEvents(context.Background(), EventFilter{
		Status:     models.StatusScheduled,
		DateBefore: day(10),
	})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "a", overdue[0].Name)

	children, err := s.ListEvents(context.Background(), EventFilter{ParentID: root.ID})
	require.NoError(t, err)
	require.Len(t, children, 2)
	// sorted by date
	assert.True(t, children[0].EventDate.Before(children[1].EventDate))
}

func TestMemoryEventStore_OccurrenceExists(t *testing.T) {
	s := NewMemoryEventStore()
	root := s.Seed(&models.Event{Name: "a", EventDate: day(1), Status: models.StatusScheduled})
	s.Seed(&models.Event{Name: "a", EventDate: day(8), ParentEventID: root.ID, Status: models.StatusScheduled})

	exists, err := s.OccurrenceExists(context.Background(), root.ID, day(8))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.OccurrenceExists(context.Background(), root.ID, day(15))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryEventStore_CompleteIfScheduledClaimsOnce(t *testing.T) {
	s := NewMemoryEventStore()
	event := s.Seed(&models.Event{Name: "a", EventDate: day(1), Status: models.StatusScheduled})

	claimed, err := s.CompleteIfScheduled(context.Background(), event.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.CompleteIfScheduled(context.Background(), event.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	claimed, err = s.CompleteIfScheduled(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestMemoryEventStore_CancelScheduledChildren(t *testing.T) {
	s := NewMemoryEventStore()
	root := s.Seed(&models.Event{Name: "a", EventDate: day(1), Status: models.StatusScheduled})
	completed := s.Seed(&models.Event{Name: "a", EventDate: day(8), ParentEventID: root.ID, Status: models.StatusCompleted})
	s.Seed(&models.Event{Name: "a", EventDate: day(15), ParentEventID: root.ID, Status: models.StatusScheduled})
	s.Seed(&models.Event{Name: "a", EventDate: day(22), ParentEventID: root.ID, Status: models.StatusScheduled})

	cancelled, err := s.CancelScheduledChildren(context.Background(), root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)

	stored, err := s.GetEvent(context.Background(), completed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
}

func TestMemoryEventStore_UpdateEvent(t *testing.T) {
	s := NewMemoryEventStore()
	event := s.Seed(&models.Event{Name: "a", EventDate: day(1), IsRecurring: true, Status: models.StatusScheduled})

	cancelled := models.StatusCancelled
	recurring := false
	updated, err := s.UpdateEvent(context.Background(), event.ID, EventPatch{
		Status:      &cancelled,
		IsRecurring: &recurring,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.False(t, updated.IsRecurring)

	_, err = s.UpdateEvent(context.Background(), "missing", EventPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAssetStore_CopyRoundTrip(t *testing.T) {
	s := NewMemoryAssetStore()
	refs := []models.AssetRef{{URL: "https://cdn.example.com/a.jpg", AltText: "a", SortOrder: 1}}
	s.SetRefs("evt001", refs)

	listed, err := s.ListAssetRefs(context.Background(), "evt001")
	require.NoError(t, err)
	assert.Equal(t, refs, listed)

	err = s.InsertAssetRefs(context.Background(), "evt002", listed)
	require.NoError(t, err)

	copied, err := s.ListAssetRefs(context.Background(), "evt002")
	require.NoError(t, err)
	assert.Equal(t, refs, copied)
}
