package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"church-system/monitoring"
)

const assetRetryKey = "assets:copy_retry"

type assetRetryJob struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Attempts int    `json:"attempts"`
}

// AssetRetryQueue holds asset-copy jobs that failed inline so a periodic
// drain can retry them. Jobs are JSON payloads on a Redis list; a job is
// dropped after maxAttempts failed retries.
type AssetRetryQueue struct {
	redis       *redis.Client
	maxAttempts int
}

func NewAssetRetryQueue(client *redis.Client, maxAttempts int) *AssetRetryQueue {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &AssetRetryQueue{redis: client, maxAttempts: maxAttempts}
}

// Enqueue records a failed source→target asset copy for a later retry.
func (q *AssetRetryQueue) Enqueue(ctx context.Context, sourceID, targetID string) error {
	payload, err := json.Marshal(assetRetryJob{Source: sourceID, Target: targetID})
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, assetRetryKey, payload).Err()
}

// Drain retries every job currently queued, using copyFn to perform the
// actual transfer. A job that fails again is re-queued with its attempt
// count bumped, until maxAttempts is reached. Returns how many copies
// succeeded during this pass.
func (q *AssetRetryQueue) Drain(
	ctx context.Context,
	copyFn func(ctx context.Context, sourceID, targetID string) error,
	logger *slog.Logger,
) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Snapshot the length so re-queued jobs from this pass are not
	// re-popped until the next drain.
	length, err := q.redis.LLen(ctx, assetRetryKey).Result()
	if err != nil {
		return 0, err
	}

	succeeded := 0
	for i := int64(0); i < length; i++ {
		payload, err := q.redis.RPop(ctx, assetRetryKey).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return succeeded, err
		}

		var job assetRetryJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			logger.Error("asset retry: dropping malformed job", "payload", payload, "error", err)
			continue
		}

		if err := copyFn(ctx, job.Source, job.Target); err != nil {
			job.Attempts++
			if job.Attempts >= q.maxAttempts {
				monitoring.TrackAssetRetry("dropped")
				logger.Error("asset retry: giving up",
					"source", job.Source,
					"target", job.Target,
					"attempts", job.Attempts,
					"error", err,
				)
				continue
			}
			monitoring.TrackAssetRetry("requeued")
			logger.Warn("asset retry: copy failed, re-queueing",
				"source", job.Source,
				"target", job.Target,
				"attempts", job.Attempts,
				"error", err,
			)
			requeue, merr := json.Marshal(job)
			if merr == nil {
				if perr := q.redis.LPush(ctx, assetRetryKey, requeue).Err(); perr != nil {
					logger.Error("asset retry: re-queue failed", "error", perr)
				}
			}
			continue
		}

		succeeded++
		monitoring.TrackAssetRetry("succeeded")
	}
	return succeeded, nil
}
