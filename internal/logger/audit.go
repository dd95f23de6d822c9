package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuditAction log một hành động audit
type AuditAction struct {
	Action       string                 `json:"action"`        // Tên hành động (ví dụ: "report_submit", "report_approve")
	ActorID      string                 `json:"actor_id"`      // ID người thực hiện (ambassador hoặc reviewer)
	ActorRole    string                 `json:"actor_role"`    // Vai trò người thực hiện
	ResourceID   string                 `json:"resource_id"`   // ID tài nguyên bị ảnh hưởng
	ResourceType string                 `json:"resource_type"` // Loại tài nguyên (ví dụ: "monthly_report", "export_job")
	IP           string                 `json:"ip"`            // IP address
	UserAgent    string                 `json:"user_agent"`    // User agent
	Details      map[string]interface{} `json:"details"`       // Chi tiết bổ sung
	Timestamp    time.Time              `json:"timestamp"`     // Thời gian
}

// LogAction log một hành động audit
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	auditLogger := GetAuditLogger()

	if details == nil {
		details = make(map[string]interface{})
	}

	audit := AuditAction{
		Action:    action,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Details:   details,
		Timestamp: time.Now(),
	}

	// Lấy actor từ context nếu có (set bởi actor middleware)
	if actorID := c.Locals("actorID"); actorID != nil {
		if aid, ok := actorID.(string); ok {
			audit.ActorID = aid
		}
	}
	if actorRole := c.Locals("actorRole"); actorRole != nil {
		if role, ok := actorRole.(string); ok {
			audit.ActorRole = role
		}
	}

	if requestID := c.Get("X-Request-ID"); requestID != "" {
		audit.Details["request_id"] = requestID
	}

	auditLogger.WithFields(logrus.Fields{
		"action":        audit.Action,
		"actor_id":      audit.ActorID,
		"actor_role":    audit.ActorRole,
		"resource_id":   audit.ResourceID,
		"resource_type": audit.ResourceType,
		"ip":            audit.IP,
		"user_agent":    audit.UserAgent,
		"details":       audit.Details,
		"timestamp":     audit.Timestamp,
	}).Info("Audit log")
}

// LogCRUD log các thao tác CRUD
func LogCRUD(operation string, resourceType string, resourceID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["operation"] = operation
	details["resource_type"] = resourceType
	details["resource_id"] = resourceID

	LogAction("crud_"+operation, c, details)
}

// LogTransition log một lần chuyển trạng thái báo cáo (submit, approve, reject, ...)
func LogTransition(action string, reportID string, fromStatus string, toStatus string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["report_id"] = reportID
	details["from_status"] = fromStatus
	details["to_status"] = toStatus

	LogAction("report_"+action, c, details)
}
