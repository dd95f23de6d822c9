// Package router đăng ký các route thuộc domain Report: monthly report
// (CRUD + máy trạng thái), cumulative report (generate/send) và dirty region.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"ambassador_hub/internal/api/middleware"
	reporthdl "ambassador_hub/internal/api/report/handler"
	reportsvc "ambassador_hub/internal/api/report/service"
	apirouter "ambassador_hub/internal/api/router"
)

// Register đăng ký tất cả route report lên v1.
// Narrator được inject từ cmd/server để giữ Aggregation Engine độc lập
// với cách sinh insight.
func Register(narrator reportsvc.Narrator) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		monthlyHandler, err := reporthdl.NewMonthlyReportHandler()
		if err != nil {
			return fmt.Errorf("create monthly report handler: %w", err)
		}

		actorMw := middleware.RequireActor()
		reviewerMw := middleware.RequireRole(middleware.RoleReviewer, middleware.RoleAdmin)

		// Vòng đời báo cáo tháng
		apirouter.RegisterRouteWithMiddleware(v1, "/monthly-report", "POST", "/create", []fiber.Handler{actorMw}, monthlyHandler.HandleCreate)
		apirouter.RegisterRouteWithMiddleware(v1, "/monthly-report", "PUT", "/:id/draft", []fiber.Handler{actorMw}, monthlyHandler.HandleUpdateDraft)
		apirouter.RegisterRouteWithMiddleware(v1, "/monthly-report", "POST", "/:id/submit", []fiber.Handler{actorMw}, monthlyHandler.HandleSubmit)
		apirouter.RegisterRouteWithMiddleware(v1, "/monthly-report", "POST", "/:id/claim", []fiber.Handler{reviewerMw}, monthlyHandler.HandleClaim)
		apirouter.RegisterRouteWithMiddleware(v1, "/monthly-report", "POST", "/:id/decide", []fiber.Handler{reviewerMw}, monthlyHandler.HandleDecide)
		apirouter.RegisterRouteWithMiddleware(v1, "/monthly-report", "POST", "/:id/resubmit", []fiber.Handler{actorMw}, monthlyHandler.HandleResubmit)
		apirouter.RegisterRouteWithMiddleware(v1, "/monthly-report", "GET", "/query", nil, monthlyHandler.HandleQuery)
		apirouter.RegisterRouteWithMiddleware(v1, "/monthly-report", "DELETE", "/:id/soft", []fiber.Handler{actorMw}, monthlyHandler.HandleSoftDelete)

		// CRUD đọc cho monthly report (dữ liệu ghi đi qua các action ở trên)
		r.RegisterCRUDRoutes(v1, "/monthly-report", monthlyHandler, apirouter.ReadOnlyConfig)

		// Cumulative report: generate/send + CRUD đọc
		cumulativeHandler, err := reporthdl.NewCumulativeReportHandler(narrator)
		if err != nil {
			return fmt.Errorf("create cumulative report handler: %w", err)
		}
		apirouter.RegisterRouteWithMiddleware(v1, "/cumulative-report", "POST", "/generate", []fiber.Handler{reviewerMw}, cumulativeHandler.HandleGenerate)
		apirouter.RegisterRouteWithMiddleware(v1, "/cumulative-report", "POST", "/:id/send", []fiber.Handler{reviewerMw}, cumulativeHandler.HandleSend)
		r.RegisterCRUDRoutes(v1, "/cumulative-report", cumulativeHandler, apirouter.ReadOnlyConfig)

		// Dirty region: chỉ đọc — hàng đợi tổng hợp do engine quản lý
		dirtyHandler, err := reporthdl.NewDirtyRegionHandler()
		if err != nil {
			return fmt.Errorf("create dirty region handler: %w", err)
		}
		r.RegisterCRUDRoutes(v1, "/dirty-region", dirtyHandler, apirouter.ReadOnlyConfig)

		return nil
	}
}
