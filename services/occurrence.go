package services

import (
	"context"
	"time"

	"church-system/models"
	"church-system/monitoring"
)

// MaterializeNext computes and persists exactly one occurrence following
// the given event, respecting both termination conditions. Asset references
// are copied from the source best-effort; a copy failure never fails the
// materialization.
func (s *SchedulerService) MaterializeNext(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("load event", err)
	}
	if !event.IsRecurring {
		return nil, invalidState(ReasonNotRecurring)
	}

	next, err := Advance(event.EventDate, event.RecurrenceRule)
	if err != nil {
		return nil, invalidState(err.Error())
	}
	if event.HasEnd() && next.After(event.RecurrenceEnd) {
		return nil, invalidState(ReasonEndReached)
	}
	if event.HasCountLimit() {
		children, err := s.events.CountChildren(ctx, event.RootID())
		if err != nil {
			return nil, storeErr("count occurrences", err)
		}
		if children >= event.RecurrenceCount {
			return nil, invalidState(ReasonMaxReached)
		}
	}

	created, err := s.events.InsertEvent(ctx, event.NextOccurrence(next))
	if err != nil {
		return nil, storeErr("insert occurrence", err)
	}

	s.copyAssets(ctx, event.ID, created.ID)
	monitoring.TrackOccurrencesCreated("materialize", 1)

	s.logger.Info("occurrence materialized",
		"root", created.ParentEventID,
		"event", created.ID,
		"date", created.EventDate,
	)
	return created, nil
}

// Generate produces up to count future occurrences for the series the given
// event belongs to, in one bulk insert. The anchor is the event's own date;
// when fromToday is set the anchor is first advanced past the start of the
// current day so a dormant series does not backfill past dates. Dates that
// already exist for the series are skipped; a reached termination condition
// stops the whole loop.
func (s *SchedulerService) Generate(ctx context.Context, eventID string, count int, fromToday bool) ([]*models.Event, error) {
	if count <= 0 {
		return nil, invalidState("occurrence count must be positive")
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("load event", err)
	}
	if !event.IsRecurring {
		return nil, invalidState(ReasonNotRecurring)
	}
	rootID := event.RootID()

	var anchor time.Time
	if fromToday {
		anchor, err = AdvanceToFuture(event.EventDate, event.RecurrenceRule, s.now().In(s.loc))
	} else {
		anchor, err = Advance(event.EventDate, event.RecurrenceRule)
	}
	if err != nil {
		return nil, invalidState(err.Error())
	}

	existing := 0
	if event.HasCountLimit() {
		existing, err = s.events.CountChildren(ctx, rootID)
		if err != nil {
			return nil, storeErr("count occurrences", err)
		}
	}

	var staged []*models.Event
	for i := 0; i < count; i++ {
		if i > 0 {
			anchor, err = Advance(anchor, event.RecurrenceRule)
			if err != nil {
				return nil, invalidState(err.Error())
			}
		}
		if event.HasEnd() && anchor.After(event.RecurrenceEnd) {
			break
		}
		if event.HasCountLimit() && existing+len(staged) >= event.RecurrenceCount {
			break
		}
		exists, err := s.events.OccurrenceExists(ctx, rootID, anchor)
		if err != nil {
			return nil, storeErr("check existing occurrence", err)
		}
		if exists {
			continue
		}
		staged = append(staged, event.NextOccurrence(anchor))
	}

	if len(staged) == 0 {
		return nil, ErrNoNewOccurrences
	}

	created, err := s.events.InsertEvents(ctx, staged)
	if err != nil {
		return nil, storeErr("insert occurrences", err)
	}
	if len(created) == 0 {
		// every staged row lost the race to a concurrent generator
		return nil, ErrNoNewOccurrences
	}

	for _, occurrence := range created {
		s.copyAssets(ctx, rootID, occurrence.ID)
	}
	monitoring.TrackOccurrencesCreated("generate", len(created))

	s.logger.Info("occurrences generated",
		"root", rootID,
		"requested", count,
		"created", len(created),
	)
	return created, nil
}
