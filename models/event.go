package models

import (
	"time"
)

// Recurrence rules supported by the scheduler.
const (
	RuleDaily   = "daily"
	RuleWeekly  = "weekly"
	RuleMonthly = "monthly"
	RuleYearly  = "yearly"
)

// Event statuses. "completed" and "cancelled" are terminal.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Event struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	Capacity        int       `json:"capacity"`
	EventDate       time.Time `json:"event_date"`
	IsRecurring     bool      `json:"is_recurring"`
	RecurrenceRule  string    `json:"recurrence_rule"`
	RecurrenceEnd   time.Time `json:"recurrence_end"`   // zero = no end date
	RecurrenceCount int       `json:"recurrence_count"` // 0 = unlimited
	ParentEventID   string    `json:"parent_event_id"`  // empty on the series root
	Status          string    `json:"status"`
}

// IsRoot reports whether the event is the root of its series.
func (e *Event) IsRoot() bool {
	return e.ParentEventID == ""
}

// RootID returns the id of the series root this event belongs to.
func (e *Event) RootID() string {
	if e.ParentEventID != "" {
		return e.ParentEventID
	}
	return e.ID
}

// HasEnd reports whether the series has an end-date termination condition.
func (e *Event) HasEnd() bool {
	return !e.RecurrenceEnd.IsZero()
}

// HasCountLimit reports whether the series caps its occurrence count.
func (e *Event) HasCountLimit() bool {
	return e.RecurrenceCount > 0
}

// ValidRule reports whether rule is one of the supported recurrence rules.
func ValidRule(rule string) bool {
	switch rule {
	case RuleDaily, RuleWeekly, RuleMonthly, RuleYearly:
		return true
	}
	return false
}

// TerminalStatus reports whether status can no longer change.
func TerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// NextOccurrence builds the event payload for the occurrence following e,
// dated at next. Descriptive fields and the recurrence settings are copied
// verbatim; the new occurrence references the ultimate series root.
func (e *Event) NextOccurrence(next time.Time) *Event {
	return &Event{
		Name:            e.Name,
		Description:     e.Description,
		Location:        e.Location,
		Capacity:        e.Capacity,
		EventDate:       next,
		IsRecurring:     true,
		RecurrenceRule:  e.RecurrenceRule,
		RecurrenceEnd:   e.RecurrenceEnd,
		RecurrenceCount: e.RecurrenceCount,
		ParentEventID:   e.RootID(),
		Status:          StatusScheduled,
	}
}
