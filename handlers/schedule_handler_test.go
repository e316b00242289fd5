package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-system/services"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *router.ApiError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Status
}

func TestApiError_Mapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusOf(t, apiError(services.ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, apiError(services.ErrInvalidState)))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, apiError(services.ErrNoNewOccurrences)))
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, apiError(errors.New("boom"))))
}

func TestApiError_WrappedReasonsStayBadRequest(t *testing.T) {
	wrapped := apiError(services.ErrInvalidState)
	var apiErr *router.ApiError
	require.ErrorAs(t, wrapped, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	persistence := &services.PersistenceError{Op: "insert occurrence", Err: errors.New("disk full")}
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, apiError(persistence)))
}
