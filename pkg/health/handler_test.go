package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	typ     CheckType
	healthy bool
}

func (s stubChecker) Type() CheckType { return s.typ }
func (s stubChecker) Check(ctx context.Context) Result {
	return Result{Healthy: s.healthy, Message: "stub", CheckedAt: time.Now()}
}

func TestHandlerAllHealthyReturns200(t *testing.T) {
	h := Handler(stubChecker{typ: CheckTypeStore, healthy: true})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandlerUnhealthyReturns503(t *testing.T) {
	h := Handler(stubChecker{typ: CheckTypeStore, healthy: false})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"unavailable"`)
}

func TestHandlerNoCheckersReturns200(t *testing.T) {
	h := Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
