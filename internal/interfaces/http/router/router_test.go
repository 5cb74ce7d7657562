package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ipshield/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResource_Mount(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	t.Run("every method", func(t *testing.T) {
		engine := gin.New()
		Resource{Prefix: "/items", Routes: []Route{
			get("", ok), post("", ok), put("/:id", ok), patch("/:id", ok), remove("/:id", ok),
		}}.mount(engine.Group("/api"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/items"},
			{http.MethodPost, "/api/items"},
			{http.MethodPut, "/api/items/1"},
			{http.MethodPatch, "/api/items/1"},
			{http.MethodDelete, "/api/items/1"},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, tc.method+" "+tc.path)
		}
	})

	t.Run("nested resources run parent middleware first", func(t *testing.T) {
		var order []string
		mark := func(name string) gin.HandlerFunc {
			return func(c *gin.Context) {
				order = append(order, name)
				c.Next()
			}
		}

		engine := gin.New()
		Resource{
			Prefix:     "/contracts",
			Middleware: []gin.HandlerFunc{mark("auth")},
			Nested: []Resource{{
				Prefix:     "/:id/files",
				Middleware: []gin.HandlerFunc{mark("files")},
				Routes:     []Route{get("", ok)},
			}},
		}.mount(engine)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contracts/42/files", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"auth", "files"}, order)
	})
}

func testHandlers() Handlers {
	return Handlers{
		Auth:        handler.NewAuthHandler(nil),
		Customer:    handler.NewCustomerHandler(nil),
		Contract:    handler.NewContractHandler(nil),
		Certificate: handler.NewCertificateHandler(nil),
		System:      handler.NewSystemHandler("test", nil),
	}
}

func denyAll(c *gin.Context) {
	c.AbortWithStatus(http.StatusUnauthorized)
}

func TestMount_RouteTable(t *testing.T) {
	engine := gin.New()
	Mount(engine, testHandlers(), Guards{Authenticated: []gin.HandlerFunc{denyAll}})

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /health/ready",
		"GET /api/v1/health",
		"GET /api/v1/health/ready",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/logout",
		"GET /api/v1/auth/me",
		"PUT /api/v1/auth/password",
		"GET /api/v1/customers",
		"POST /api/v1/customers",
		"GET /api/v1/customers/lookup",
		"GET /api/v1/customers/:id",
		"PUT /api/v1/customers/:id",
		"DELETE /api/v1/customers/:id",
		"PATCH /api/v1/customers/:id/status",
		"GET /api/v1/contracts",
		"POST /api/v1/contracts",
		"GET /api/v1/contracts/search",
		"GET /api/v1/contracts/:id",
		"PUT /api/v1/contracts/:id",
		"DELETE /api/v1/contracts/:id",
		"GET /api/v1/contracts/:id/summary",
		"POST /api/v1/contracts/:id/pause",
		"POST /api/v1/contracts/:id/resume",
		"GET /api/v1/contracts/:id/history",
		"GET /api/v1/contracts/:id/installments",
		"POST /api/v1/contracts/:id/installments/generate",
		"GET /api/v1/contracts/:id/payment-logs",
		"POST /api/v1/contracts/:id/certificates/upload-url",
		"POST /api/v1/contracts/:id/certificates/confirm",
		"GET /api/v1/contracts/:id/certificates/download",
		"DELETE /api/v1/contracts/:id/certificates",
		"PATCH /api/v1/installments/:id",
		"POST /api/v1/installments/:id/payments",
		"POST /api/v1/installments/:id/mark-paid",
		"POST /api/v1/payment-logs/:id/invoice-export",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
	assert.Len(t, registered, len(expected))
}

func TestMount_Guards(t *testing.T) {
	engine := gin.New()
	limited := 0
	Mount(engine, testHandlers(), Guards{
		Authenticated: []gin.HandlerFunc{denyAll},
		Login: []gin.HandlerFunc{func(c *gin.Context) {
			limited++
			c.AbortWithStatus(http.StatusTooManyRequests)
		}},
	})

	serve := func(method, path string) int {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w.Code
	}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/contracts"},
		{http.MethodGet, "/api/v1/contracts/abc/certificates/download"},
		{http.MethodPost, "/api/v1/installments/abc/payments"},
		{http.MethodPost, "/api/v1/payment-logs/abc/invoice-export"},
		{http.MethodGet, "/api/v1/customers/lookup"},
		{http.MethodGet, "/api/v1/auth/me"},
	} {
		assert.Equal(t, http.StatusUnauthorized, serve(tc.method, tc.path), tc.path)
	}

	assert.Equal(t, http.StatusTooManyRequests, serve(http.MethodPost, "/api/v1/auth/login"))
	assert.Equal(t, 1, limited)

	require.Equal(t, http.StatusOK, serve(http.MethodGet, "/health"))
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/v1/health"))
}
