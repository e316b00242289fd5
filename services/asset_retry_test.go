package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func retryPayload(t *testing.T, source, target string, attempts int) []byte {
	t.Helper()
	payload, err := json.Marshal(assetRetryJob{Source: source, Target: target, Attempts: attempts})
	require.NoError(t, err)
	return payload
}

func TestAssetRetryQueue_Enqueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	queue := NewAssetRetryQueue(db, 3)

	mock.ExpectLPush(assetRetryKey, retryPayload(t, "evt001", "evt002", 0)).SetVal(1)

	err := queue.Enqueue(context.Background(), "evt001", "evt002")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRetryQueue_DrainSuccess(t *testing.T) {
	db, mock := redismock.NewClientMock()
	queue := NewAssetRetryQueue(db, 3)

	mock.ExpectLLen(assetRetryKey).SetVal(1)
	mock.ExpectRPop(assetRetryKey).SetVal(string(retryPayload(t, "evt001", "evt002", 1)))

	var copiedSource, copiedTarget string
	copied, err := queue.Drain(context.Background(), func(_ context.Context, source, target string) error {
		copiedSource, copiedTarget = source, target
		return nil
	}, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, copied)
	assert.Equal(t, "evt001", copiedSource)
	assert.Equal(t, "evt002", copiedTarget)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRetryQueue_DrainRequeuesFailedJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	queue := NewAssetRetryQueue(db, 3)

	mock.ExpectLLen(assetRetryKey).SetVal(1)
	mock.ExpectRPop(assetRetryKey).SetVal(string(retryPayload(t, "evt001", "evt002", 0)))
	mock.ExpectLPush(assetRetryKey, retryPayload(t, "evt001", "evt002", 1)).SetVal(1)

	copied, err := queue.Drain(context.Background(), func(_ context.Context, _, _ string) error {
		return errors.New("asset store down")
	}, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 0, copied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRetryQueue_DrainDropsAfterMaxAttempts(t *testing.T) {
	db, mock := redismock.NewClientMock()
	queue := NewAssetRetryQueue(db, 3)

	// attempts bumps to 3 on this failure, reaching the limit: no re-queue
	mock.ExpectLLen(assetRetryKey).SetVal(1)
	mock.ExpectRPop(assetRetryKey).SetVal(string(retryPayload(t, "evt001", "evt002", 2)))

	copied, err := queue.Drain(context.Background(), func(_ context.Context, _, _ string) error {
		return errors.New("asset store down")
	}, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 0, copied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRetryQueue_DrainSkipsMalformedPayload(t *testing.T) {
	db, mock := redismock.NewClientMock()
	queue := NewAssetRetryQueue(db, 3)

	mock.ExpectLLen(assetRetryKey).SetVal(2)
	mock.ExpectRPop(assetRetryKey).SetVal("not-json")
	mock.ExpectRPop(assetRetryKey).SetVal(string(retryPayload(t, "evt001", "evt002", 0)))

	copied, err := queue.Drain(context.Background(), func(_ context.Context, _, _ string) error {
		return nil
	}, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, copied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRetryQueue_DrainEmptyQueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	queue := NewAssetRetryQueue(db, 3)

	mock.ExpectLLen(assetRetryKey).SetVal(0)

	copied, err := queue.Drain(context.Background(), func(_ context.Context, _, _ string) error {
		t.Fatal("copy should not be called")
		return nil
	}, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 0, copied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepLock_AcquireAndRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lock := NewSweepLock(db, 10*time.Minute)

	mock.ExpectSetNX(sweepLockKey, "1", 10*time.Minute).SetVal(true)
	mock.ExpectDel(sweepLockKey).SetVal(1)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	lock.Release(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepLock_HeldByAnotherSweep(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lock := NewSweepLock(db, 10*time.Minute)

	mock.ExpectSetNX(sweepLockKey, "1", 10*time.Minute).SetVal(false)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepLock_NoRedisIsNoop(t *testing.T) {
	lock := NewSweepLock(nil, time.Minute)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	lock.Release(context.Background())
}
