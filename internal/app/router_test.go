package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
)

func applyChain(chain []func(http.Handler) http.Handler, final http.Handler) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		final = chain[i](final)
	}
	return final
}

func TestRequestMiddlewareTagsAndBoundsRequests(t *testing.T) {
	cfg := &Config{AppEnv: "production", RequestTimeout: 30 * time.Second}

	var reqID string
	var deadlineSet bool
	var deadline time.Time
	handler := applyChain(requestMiddleware(cfg), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID = chimw.GetReqID(r.Context())
		deadline, deadlineSet = r.Context().Deadline()
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, reqID)
	require.True(t, deadlineSet)
	require.WithinDuration(t, time.Now().Add(cfg.RequestTimeout), deadline, time.Second)
}

func TestRequestMiddlewareSkipsDeadlineWhenDisabled(t *testing.T) {
	cfg := &Config{AppEnv: "production"}

	var deadlineSet bool
	handler := applyChain(requestMiddleware(cfg), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadlineSet = r.Context().Deadline()
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.False(t, deadlineSet)
}
