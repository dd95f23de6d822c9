package middleware

import (
	"fmt"
	"strings"

	"ambassador_hub/internal/common"

	"github.com/gofiber/fiber/v3"
)

// Các vai trò hợp lệ của actor trong hệ thống.
const (
	RoleAmbassador = "ambassador"
	RoleReviewer   = "reviewer"
	RoleAdmin      = "admin"
)

// ActorContextMiddleware đọc danh tính actor từ header và lưu vào context.
// - X-Actor-ID: định danh của người thực hiện request
// - X-Actor-Role: vai trò (ambassador | reviewer | admin)
// Route không yêu cầu danh tính vẫn đi qua bình thường, các route cần
// danh tính sẽ kiểm tra bằng RequireActor/RequireRole.
func ActorContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		actorID := strings.TrimSpace(c.Get("X-Actor-ID"))
		actorRole := strings.TrimSpace(strings.ToLower(c.Get("X-Actor-Role")))

		if actorID != "" {
			c.Locals("actorID", actorID)
		}
		if actorRole != "" {
			c.Locals("actorRole", actorRole)
		}

		return c.Next()
	}
}

// RequireActor yêu cầu request phải có X-Actor-ID.
func RequireActor() fiber.Handler {
	return func(c fiber.Ctx) error {
		actorID, _ := c.Locals("actorID").(string)
		if actorID == "" {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu header X-Actor-ID để xác định người thực hiện",
				common.StatusUnauthorized,
				nil,
			))
			return nil
		}
		return c.Next()
	}
}

// RequireRole yêu cầu actor phải có một trong các vai trò cho trước.
func RequireRole(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		actorID, _ := c.Locals("actorID").(string)
		if actorID == "" {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu header X-Actor-ID để xác định người thực hiện",
				common.StatusUnauthorized,
				nil,
			))
			return nil
		}

		actorRole, _ := c.Locals("actorRole").(string)
		for _, role := range roles {
			if actorRole == role {
				return c.Next()
			}
		}

		HandleErrorResponse(c, common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Vai trò '%s' không được phép thực hiện thao tác này. Yêu cầu: %s", actorRole, strings.Join(roles, ", ")),
			common.StatusForbidden,
			nil,
		))
		return nil
	}
}
