package services

import (
	"context"
	"log/slog"
	"time"

	"church-system/monitoring"
	"church-system/store"
)

// SchedulerService owns the recurring-event lifecycle: materializing
// occurrences, batch generation, completing and advancing series, the
// overdue sweep and series cancellation. It talks to the outside world only
// through the injected store ports.
type SchedulerService struct {
	events store.EventStore
	assets store.AssetStore
	retry  *AssetRetryQueue // nil when no retry queue is configured
	logger *slog.Logger
	loc    *time.Location

	now func() time.Time
}

func NewSchedulerService(
	events store.EventStore,
	assets store.AssetStore,
	retry *AssetRetryQueue,
	logger *slog.Logger,
	loc *time.Location,
) *SchedulerService {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulerService{
		events: events,
		assets: assets,
		retry:  retry,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// CopyAssetRefs copies every asset reference attached to source onto
// target. Used both inline after materialization and by the retry drain.
func (s *SchedulerService) CopyAssetRefs(ctx context.Context, sourceID, targetID string) error {
	refs, err := s.assets.ListAssetRefs(ctx, sourceID)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	return s.assets.InsertAssetRefs(ctx, targetID, refs)
}

// copyAssets is the best-effort variant: a failure is logged, counted and
// handed to the retry queue, but never surfaces to the caller. The
// materialized occurrence stands either way.
func (s *SchedulerService) copyAssets(ctx context.Context, sourceID, targetID string) {
	err := s.CopyAssetRefs(ctx, sourceID, targetID)
	if err == nil {
		return
	}
	monitoring.TrackAssetCopyFailure()
	s.logger.Warn("asset copy failed",
		"source", sourceID,
		"target", targetID,
		"error", err,
	)
	if s.retry == nil {
		return
	}
	if qerr := s.retry.Enqueue(ctx, sourceID, targetID); qerr != nil {
		s.logger.Error("asset copy retry enqueue failed",
			"source", sourceID,
			"target", targetID,
			"error", qerr,
		)
	}
}
