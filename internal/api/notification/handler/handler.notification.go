// Package notifhdl - Handler cho domain Notification: feed + đánh dấu đã đọc.
package notifhdl

import (
	"fmt"

	basehdl "ambassador_hub/internal/api/base/handler"
	notifdto "ambassador_hub/internal/api/notification/dto"
	notifmodels "ambassador_hub/internal/api/notification/models"
	notifsvc "ambassador_hub/internal/api/notification/service"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler xử lý request cho notifications.
type NotificationHandler struct {
	*basehdl.BaseHandler[notifmodels.Notification, notifdto.NotificationCreateInput, notifdto.NotificationUpdateInput]
	Svc *notifsvc.NotificationService
}

// NewNotificationHandler tạo mới NotificationHandler.
func NewNotificationHandler() (*NotificationHandler, error) {
	svc, err := notifsvc.NewNotificationService()
	if err != nil {
		return nil, fmt.Errorf("tạo NotificationService: %w", err)
	}
	return &NotificationHandler{
		BaseHandler: basehdl.NewBaseHandler[notifmodels.Notification, notifdto.NotificationCreateInput, notifdto.NotificationUpdateInput](svc),
		Svc:         svc,
	}, nil
}

// HandleFeed trả về feed thông báo của actor hiện tại (gộp theo role).
// GET /notification/feed
func (h *NotificationHandler) HandleFeed(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input notifdto.FeedQueryInput
		if err := h.ParseRequestQuery(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		actorID := h.GetActorID(c)
		actorRole, _ := c.Locals("actorRole").(string)

		page := utility.P2Int64(input.Page)
		limit := utility.P2Int64(input.Limit)
		if page <= 0 {
			page = 1
		}
		if limit <= 0 {
			limit = 10
		}

		result, err := h.Svc.Feed(c.Context(), actorID, actorRole, input.UnreadOnly, page, limit)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleMarkRead đánh dấu một thông báo đã đọc (idempotent).
// POST /notification/:id/read
func (h *NotificationHandler) HandleMarkRead(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id := h.GetIDFromContext(c)
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			h.HandleResponse(c, nil, common.WithDetails(common.ErrInvalidFormat, fmt.Sprintf("ID '%s' không đúng định dạng ObjectID", id)))
			return nil
		}

		notif, err := h.Svc.MarkRead(c.Context(), objID)
		h.HandleResponse(c, notif, err)
		return nil
	})
}

// HandleMarkAllRead đánh dấu đã đọc toàn bộ thông báo của actor hiện tại.
// POST /notification/read-all
func (h *NotificationHandler) HandleMarkAllRead(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		count, err := h.Svc.MarkAllRead(c.Context(), h.GetActorID(c))
		h.HandleResponse(c, fiber.Map{"markedCount": count}, err)
		return nil
	})
}
