package router

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ambassador_hub/internal/api/middleware"
)

// Dựng app với đúng trình tự đăng ký của report router: route cần reviewer
// đứng trước, route của tác giả và route public đứng sau trên cùng prefix.
func newRouteTestApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.ActorContextMiddleware())

	ok := func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	reviewerMw := middleware.RequireRole(middleware.RoleReviewer, middleware.RoleAdmin)
	actorMw := middleware.RequireActor()

	v1 := app.Group("/api/v1")
	RegisterRouteWithMiddleware(v1, "/monthly-report", "POST", "/:id/claim", []fiber.Handler{reviewerMw}, ok)
	RegisterRouteWithMiddleware(v1, "/monthly-report", "POST", "/:id/decide", []fiber.Handler{reviewerMw}, ok)
	RegisterRouteWithMiddleware(v1, "/monthly-report", "POST", "/:id/resubmit", []fiber.Handler{actorMw}, ok)
	RegisterRouteWithMiddleware(v1, "/monthly-report", "GET", "/query", nil, ok)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, actorID, actorRole string) int {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
	}
	if actorRole != "" {
		req.Header.Set("X-Actor-Role", actorRole)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRouteMiddleware_ScopedToSingleRoute(t *testing.T) {
	app := newRouteTestApp()

	// Route public trên cùng prefix không bị middleware của /claim chặn
	assert.Equal(t, fiber.StatusOK,
		doRequest(t, app, "GET", "/api/v1/monthly-report/query", "", ""))

	// Tác giả (ambassador) resubmit được dù route reviewer đăng ký trước
	assert.Equal(t, fiber.StatusOK,
		doRequest(t, app, "POST", "/api/v1/monthly-report/abc/resubmit", "amb-001", middleware.RoleAmbassador))

	// Thiếu danh tính vẫn bị chặn đúng route cần actor
	assert.Equal(t, fiber.StatusUnauthorized,
		doRequest(t, app, "POST", "/api/v1/monthly-report/abc/resubmit", "", ""))
}

func TestRouteMiddleware_RoleGateStillEnforced(t *testing.T) {
	app := newRouteTestApp()

	assert.Equal(t, fiber.StatusOK,
		doRequest(t, app, "POST", "/api/v1/monthly-report/abc/claim", "rev-001", middleware.RoleReviewer))
	assert.Equal(t, fiber.StatusForbidden,
		doRequest(t, app, "POST", "/api/v1/monthly-report/abc/claim", "amb-001", middleware.RoleAmbassador))
	assert.Equal(t, fiber.StatusUnauthorized,
		doRequest(t, app, "POST", "/api/v1/monthly-report/abc/decide", "", ""))
}
