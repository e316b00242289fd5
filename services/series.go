package services

import (
	"context"
	"time"

	"church-system/models"
	"church-system/monitoring"
	"church-system/store"
)

// AdvanceResult reports the outcome of CompleteAndAdvance. Next is nil when
// no follow-up occurrence was created (standalone event or a reached
// termination condition).
type AdvanceResult struct {
	Event   *models.Event `json:"event"`
	Next    *models.Event `json:"next,omitempty"`
	Message string        `json:"message"`
}

// SweepResult records the per-event outcome of a sweep pass.
type SweepResult struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"` // completed | failed
	Error   string `json:"error,omitempty"`
}

// SweepReport aggregates one sweep pass.
type SweepReport struct {
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []SweepResult `json:"results,omitempty"`
}

// CancelResult reports the outcome of CancelSeries.
type CancelResult struct {
	Root              *models.Event `json:"root"`
	CancelledChildren int           `json:"cancelled_children"`
}

// CompleteAndAdvance marks the event completed and, when the event seeds a
// series, materializes the next occurrence. The completion is a conditional
// claim: an event that is already completed or cancelled (for instance by an
// overlapping sweep) is not claimable. A failed materialization is logged as
// a warning and never undoes the completion.
func (s *SchedulerService) CompleteAndAdvance(ctx context.Context, eventID string) (*AdvanceResult, error) {
	claimed, err := s.events.CompleteIfScheduled(ctx, eventID)
	if err != nil {
		return nil, storeErr("complete event", err)
	}
	if !claimed {
		if _, err := s.events.GetEvent(ctx, eventID); err != nil {
			return nil, storeErr("load event", err)
		}
		return nil, invalidState(ReasonNotScheduled)
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("load event", err)
	}

	seedID := ""
	if event.IsRecurring {
		seedID = event.ID
	} else if event.ParentEventID != "" {
		seedID = event.ParentEventID
	}

	result := &AdvanceResult{Event: event, Message: "completed"}
	if seedID == "" {
		return result, nil
	}

	next, err := s.MaterializeNext(ctx, seedID)
	if err != nil {
		// Completion stands; a blocked or failed materialization only
		// means the series does not advance this time.
		s.logger.Warn("next occurrence not created",
			"event", eventID,
			"seed", seedID,
			"error", err,
		)
		return result, nil
	}

	result.Next = next
	result.Message = "completed and next occurrence created"
	return result, nil
}

// Sweep finds every event still scheduled with a date before the start of
// today and drives CompleteAndAdvance for each. Failures are isolated per
// event; one bad row never blocks the rest of the pass. The sweeper owns no
// timer, an external trigger invokes it.
func (s *SchedulerService) Sweep(ctx context.Context) (*SweepReport, error) {
	started := s.now()
	today := StartOfDay(started.In(s.loc))

	overdue, err := s.events.ListEvents(ctx, store.EventFilter{
		Status:     models.StatusScheduled,
		DateBefore: today,
	})
	if err != nil {
		return nil, storeErr("list overdue events", err)
	}

	report := &SweepReport{}
	for _, event := range overdue {
		report.Processed++
		if _, err := s.CompleteAndAdvance(ctx, event.ID); err != nil {
			report.Failed++
			report.Results = append(report.Results, SweepResult{
				EventID: event.ID,
				Status:  "failed",
				Error:   err.Error(),
			})
			s.logger.Error("sweep: failed to advance event",
				"event", event.ID,
				"error", err,
			)
			continue
		}
		report.Succeeded++
		report.Results = append(report.Results, SweepResult{
			EventID: event.ID,
			Status:  "completed",
		})
	}

	monitoring.TrackSweep(report.Succeeded, report.Failed, time.Since(started))
	if report.Processed > 0 {
		s.logger.Info("sweep finished",
			"processed", report.Processed,
			"succeeded", report.Succeeded,
			"failed", report.Failed,
		)
	}
	return report, nil
}

// CancelSeries terminates the series: the root is cancelled (when still
// pending) and stops recurring, and every still-scheduled occurrence is
// cancelled. Completed occurrences are history and stay untouched.
func (s *SchedulerService) CancelSeries(ctx context.Context, eventID string) (*CancelResult, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("load event", err)
	}

	recurring := false
	patch := store.EventPatch{IsRecurring: &recurring}
	if event.Status == models.StatusScheduled {
		cancelled := models.StatusCancelled
		patch.Status = &cancelled
	}
	root, err := s.events.UpdateEvent(ctx, eventID, patch)
	if err != nil {
		return nil, storeErr("cancel root event", err)
	}

	children, err := s.events.CancelScheduledChildren(ctx, eventID)
	if err != nil {
		return nil, storeErr("cancel pending occurrences", err)
	}

	s.logger.Info("series cancelled",
		"root", eventID,
		"cancelled_children", children,
	)
	return &CancelResult{Root: root, CancelledChildren: children}, nil
}
