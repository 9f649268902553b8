package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMutation(t *testing.T) {
	t.Parallel()

	counter := mutationsTotal.WithLabelValues(EntityGenre, OperationCreate)
	before := testutil.ToFloat64(counter)
	RecordMutation(EntityGenre, OperationCreate)
	RecordMutation(EntityGenre, OperationCreate)
	assert.InDelta(t, before+2, testutil.ToFloat64(counter), 0)
}

func TestRecordBlockedDelete(t *testing.T) {
	t.Parallel()

	counter := blockedDeletesTotal.WithLabelValues(EntityAuthor)
	before := testutil.ToFloat64(counter)
	RecordBlockedDelete(EntityAuthor)
	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0)
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	RecordRejected(EntityBook)

	e := echo.New()
	RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_rejected_submissions_total{entity="book"}`)
}
