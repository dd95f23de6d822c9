// Package router đăng ký các route thuộc domain Export.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	exporthdl "ambassador_hub/internal/api/export/handler"
	"ambassador_hub/internal/api/middleware"
	apirouter "ambassador_hub/internal/api/router"
)

// Register đăng ký các route export job lên v1.
func Register() apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		jobHandler, err := exporthdl.NewExportJobHandler()
		if err != nil {
			return fmt.Errorf("create export job handler: %w", err)
		}

		actorMw := middleware.RequireActor()

		apirouter.RegisterRouteWithMiddleware(v1, "/export-job", "POST", "/request", []fiber.Handler{actorMw}, jobHandler.HandleRequestExport)
		apirouter.RegisterRouteWithMiddleware(v1, "/export-job", "POST", "/:id/cancel", []fiber.Handler{actorMw}, jobHandler.HandleCancel)
		apirouter.RegisterRouteWithMiddleware(v1, "/export-job", "GET", "/query", nil, jobHandler.HandleQuery)

		// CRUD đọc để poll trạng thái job
		r.RegisterCRUDRoutes(v1, "/export-job", jobHandler, apirouter.ReadOnlyConfig)

		return nil
	}
}
