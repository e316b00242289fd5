package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_RootID(t *testing.T) {
	root := &Event{ID: "evt001"}
	assert.True(t, root.IsRoot())
	assert.Equal(t, "evt001", root.RootID())

	child := &Event{ID: "evt002", ParentEventID: "evt001"}
	assert.False(t, child.IsRoot())
	assert.Equal(t, "evt001", child.RootID())
}

func TestEvent_TerminationConditions(t *testing.T) {
	event := &Event{}
	assert.False(t, event.HasEnd())
	assert.False(t, event.HasCountLimit())

	event.RecurrenceEnd = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	event.RecurrenceCount = 10
	assert.True(t, event.HasEnd())
	assert.True(t, event.HasCountLimit())
}

func TestEvent_NextOccurrence(t *testing.T) {
	root := &Event{
		ID:              "evt001",
		Name:            "Sunday Service",
		Description:     "Main weekly service",
		Location:        "Sanctuary",
		Capacity:        300,
		EventDate:       time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC),
		IsRecurring:     true,
		RecurrenceRule:  RuleWeekly,
		RecurrenceCount: 52,
		Status:          StatusScheduled,
	}
	next := time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC)

	occurrence := root.NextOccurrence(next)

	assert.Empty(t, occurrence.ID)
	assert.Equal(t, "Sunday Service", occurrence.Name)
	assert.Equal(t, "Main weekly service", occurrence.Description)
	assert.Equal(t, "Sanctuary", occurrence.Location)
	assert.Equal(t, 300, occurrence.Capacity)
	assert.True(t, next.Equal(occurrence.EventDate))
	assert.True(t, occurrence.IsRecurring)
	assert.Equal(t, RuleWeekly, occurrence.RecurrenceRule)
	assert.Equal(t, 52, occurrence.RecurrenceCount)
	assert.Equal(t, "evt001", occurrence.ParentEventID)
	assert.Equal(t, StatusScheduled, occurrence.Status)
}

func TestEvent_NextOccurrenceFromChildReferencesRoot(t *testing.T) {
	child := &Event{
		ID:             "evt002",
		Name:           "Sunday Service",
		IsRecurring:    true,
		RecurrenceRule: RuleWeekly,
		ParentEventID:  "evt001",
		Status:         StatusScheduled,
	}

	occurrence := child.NextOccurrence(time.Date(2024, 1, 21, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "evt001", occurrence.ParentEventID)
}

func TestValidRule(t *testing.T) {
	assert.True(t, ValidRule(RuleDaily))
	assert.True(t, ValidRule(RuleWeekly))
	assert.True(t, ValidRule(RuleMonthly))
	assert.True(t, ValidRule(RuleYearly))
	assert.False(t, ValidRule(""))
	assert.False(t, ValidRule("fortnightly"))
}

func TestTerminalStatus(t *testing.T) {
	assert.False(t, TerminalStatus(StatusScheduled))
	assert.True(t, TerminalStatus(StatusCompleted))
	assert.True(t, TerminalStatus(StatusCancelled))
}
