package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/apfk88/heartglance/internal/platform/correlation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationMiddleware_AttachesID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var id string
	handler := correlationMiddleware(func(c echo.Context) error {
		got, ok := correlation.ID(c.Request().Context())
		require.True(t, ok, "request context must carry a correlation ID")
		id = got
		return nil
	})

	require.NoError(t, handler(c))
	assert.Len(t, id, 12)
}

func TestCorrelationMiddleware_UniquePerRequest(t *testing.T) {
	e := echo.New()

	var ids []string
	handler := correlationMiddleware(func(c echo.Context) error {
		id, _ := correlation.ID(c.Request().Context())
		ids = append(ids, id)
		return nil
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		require.NoError(t, handler(c))
	}

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestServer_RequestsCarryCorrelationID(t *testing.T) {
	srv := newTestServer(t, &fakeRecorder{}, &fakeProvider{})

	var id string
	srv.echo.GET("/ctxid", func(c echo.Context) error {
		id, _ = correlation.ID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ctxid", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, id, 12)
}
