package mcpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIPAuthMiddleware(t *testing.T) {
	t.Run("empty list rejected", func(t *testing.T) {
		_, err := NewIPAuthMiddleware(nil, false)
		require.Error(t, err)
	})

	t.Run("invalid CIDR rejected", func(t *testing.T) {
		_, err := NewIPAuthMiddleware([]string{"10.0.0.0/99"}, false)
		require.Error(t, err)
	})

	t.Run("invalid IP rejected", func(t *testing.T) {
		_, err := NewIPAuthMiddleware([]string{"not-an-ip"}, false)
		require.Error(t, err)
	})
}

func TestIsIPAllowed(t *testing.T) {
	middleware, err := NewIPAuthMiddleware([]string{"127.0.0.1", "::1", "192.168.1.0/24"}, false)
	require.NoError(t, err)

	require.True(t, middleware.IsIPAllowed("127.0.0.1"))
	require.True(t, middleware.IsIPAllowed("::1"))
	require.True(t, middleware.IsIPAllowed("192.168.1.42"))
	require.False(t, middleware.IsIPAllowed("192.168.2.1"))
	require.False(t, middleware.IsIPAllowed("10.0.0.1"))
	require.False(t, middleware.IsIPAllowed(""))
	require.False(t, middleware.IsIPAllowed("garbage"))
}

func TestIPAuthMiddlewareHTTP(t *testing.T) {
	middleware, err := NewIPAuthMiddleware([]string{"127.0.0.1"}, false)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.Middleware(next)

	t.Run("allowed remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.RemoteAddr = "127.0.0.1:54321"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("denied remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.RemoteAddr = "10.1.2.3:54321"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "IP not authorized")
	})

	t.Run("x-forwarded-for wins over remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.RemoteAddr = "10.1.2.3:54321"
		req.Header.Set("X-Forwarded-For", "127.0.0.1, 10.0.0.1")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
