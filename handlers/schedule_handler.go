package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"church-system/services"
	"church-system/utils"
)

// ScheduleHandler exposes the recurring-event operations over the
// PocketBase router. The UI's CRUD forms talk to the collections directly;
// these endpoints cover only the scheduling core.
type ScheduleHandler struct {
	scheduler        *services.SchedulerService
	redis            *redis.Client // nil when redis is not configured
	generateMaxCount int
}

func NewScheduleHandler(scheduler *services.SchedulerService, redisClient *redis.Client, generateMaxCount int) *ScheduleHandler {
	return &ScheduleHandler{
		scheduler:        scheduler,
		redis:            redisClient,
		generateMaxCount: generateMaxCount,
	}
}

// MaterializeNext - POST /api/events/{eventId}/occurrences/next
func (h *ScheduleHandler) MaterializeNext(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	created, err := h.scheduler.MaterializeNext(e.Request.Context(), eventID)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, created)
}

// Generate - POST /api/events/{eventId}/occurrences/generate
func (h *ScheduleHandler) Generate(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	var req struct {
		Count     int  `json:"count"`
		FromToday bool `json:"from_today"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if h.generateMaxCount > 0 && req.Count > h.generateMaxCount {
		req.Count = h.generateMaxCount
	}

	created, err := h.scheduler.Generate(e.Request.Context(), eventID, req.Count, req.FromToday)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"created": created,
		"count":   len(created),
	})
}

// CompleteAndAdvance - POST /api/events/{eventId}/complete
func (h *ScheduleHandler) CompleteAndAdvance(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	result, err := h.scheduler.CompleteAndAdvance(e.Request.Context(), eventID)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, result)
}

// CancelSeries - POST /api/events/{eventId}/cancel-series
func (h *ScheduleHandler) CancelSeries(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	result, err := h.scheduler.CancelSeries(e.Request.Context(), eventID)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, result)
}

// Sweep - POST /api/admin/events/sweep (manual trigger; cron is the usual
// driver)
func (h *ScheduleHandler) Sweep(e *core.RequestEvent) error {
	report, err := h.scheduler.Sweep(e.Request.Context())
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, report)
}

// Health - GET /health
func (h *ScheduleHandler) Health(e *core.RequestEvent) error {
	if h.redis != nil {
		if err := utils.RedisHealthCheck(h.redis); err != nil {
			return e.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
	}
	return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// apiError translates the scheduling error taxonomy to HTTP responses.
func apiError(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return apis.NewNotFoundError("Event not found", err)
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrNoNewOccurrences):
		return apis.NewBadRequestError(err.Error(), nil)
	default:
		return apis.NewInternalServerError("Operation failed", err)
	}
}
