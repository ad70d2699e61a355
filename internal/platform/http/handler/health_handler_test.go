package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter() *gin.Engine {
	r := gin.New()
	r.GET("/healthz", Health)
	r.HEAD("/healthz", Health)
	r.OPTIONS("/healthz", Health)
	return r
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method         string
		expectedStatus int
		expectedBody   string
	}{
		{http.MethodGet, http.StatusOK, `{"status":"ok"}`},
		{http.MethodHead, http.StatusOK, ""},
		{http.MethodOptions, http.StatusNoContent, ""},
	}

	router := setupRouter()

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.expectedBody == "" {
				assert.Zero(t, w.Body.Len())
				return
			}
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestReadiness_Ready(t *testing.T) {
	t.Parallel()

	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		checks         map[string]Checker
		expectedStatus int
		expected       ReadinessResponse
	}{
		{
			name:           "success: all dependencies up",
			checks:         map[string]Checker{"db": ok, "redis": ok},
			expectedStatus: http.StatusOK,
			expected:       ReadinessResponse{Status: "ok", Checks: map[string]string{"db": "ok", "redis": "ok"}},
		},
		{
			name:           "success: no dependencies configured",
			checks:         nil,
			expectedStatus: http.StatusOK,
			expected:       ReadinessResponse{Status: "ok", Checks: map[string]string{}},
		},
		{
			name:           "error: redis down",
			checks:         map[string]Checker{"db": ok, "redis": down},
			expectedStatus: http.StatusServiceUnavailable,
			expected:       ReadinessResponse{Status: "unavailable", Checks: map[string]string{"db": "ok", "redis": "connection refused"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := gin.New()
			r.GET("/readyz", NewReadiness(tt.checks, 0).Ready)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var got ReadinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}
