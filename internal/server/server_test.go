package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curateddiscoveries/backend/config"
	"github.com/curateddiscoveries/backend/internal/testhelpers"
)

func TestNewWiresRouterAndSessions(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	cfg := &config.Config{
		ServerHost: "localhost",
		ServerPort: "8080",
		BaseURL:    "http://localhost:5173",
		JWTSecret:  "a-long-enough-test-secret",
	}

	srv := New(cfg, db, nil, nil)
	require.NotNil(t, srv)
	assert.NotNil(t, srv.Sessions())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Protected routes reject anonymous callers.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	srv.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
