// Package router đăng ký các route thuộc domain Notification.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"ambassador_hub/internal/api/middleware"
	notifhdl "ambassador_hub/internal/api/notification/handler"
	apirouter "ambassador_hub/internal/api/router"
)

// Register đăng ký các route thông báo lên v1.
func Register() apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		notifHandler, err := notifhdl.NewNotificationHandler()
		if err != nil {
			return fmt.Errorf("create notification handler: %w", err)
		}

		actorMw := middleware.RequireActor()

		apirouter.RegisterRouteWithMiddleware(v1, "/notification", "GET", "/feed", []fiber.Handler{actorMw}, notifHandler.HandleFeed)
		apirouter.RegisterRouteWithMiddleware(v1, "/notification", "POST", "/:id/read", []fiber.Handler{actorMw}, notifHandler.HandleMarkRead)
		apirouter.RegisterRouteWithMiddleware(v1, "/notification", "POST", "/read-all", []fiber.Handler{actorMw}, notifHandler.HandleMarkAllRead)

		r.RegisterCRUDRoutes(v1, "/notification", notifHandler, apirouter.ReadOnlyConfig)

		return nil
	}
}
