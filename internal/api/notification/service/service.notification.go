// Package notifsvc - Service cho domain Notification (notifications).
package notifsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basemodels "ambassador_hub/internal/api/base/models"
	basesvc "ambassador_hub/internal/api/base/service"
	notifmodels "ambassador_hub/internal/api/notification/models"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationService service CRUD + nghiệp vụ cho bảng notifications.
type NotificationService struct {
	*basesvc.BaseServiceMongoImpl[notifmodels.Notification]
}

// NewNotificationService tạo mới NotificationService.
func NewNotificationService() (*NotificationService, error) {
	coll, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.Notifications)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Notifications, common.ErrNotFound)
	}
	return &NotificationService{BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[notifmodels.Notification](coll)}, nil
}

// Notify ghi một thông báo mới cho recipient (actor ID hoặc role).
func (s *NotificationService) Notify(ctx context.Context, recipient, notifType, title, message string, relatedReportID primitive.ObjectID) (notifmodels.Notification, error) {
	notif := notifmodels.Notification{
		Recipient:       recipient,
		Type:            notifType,
		Title:           title,
		Message:         message,
		RelatedReportID: relatedReportID,
		IsRead:          false,
	}
	return s.InsertOne(ctx, notif)
}

// MarkRead đánh dấu một thông báo đã đọc. Idempotent: gọi lại trên thông báo
// đã đọc trả về thông báo hiện tại, không lỗi.
func (s *NotificationService) MarkRead(ctx context.Context, id primitive.ObjectID) (notifmodels.Notification, error) {
	now := time.Now().UnixMilli()
	filter := bson.M{"_id": id, "isRead": false}
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	notif, err := s.FindOneAndUpdate(ctx, filter, update, opts)
	if err == nil {
		return notif, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return notif, err
	}

	// Không match: hoặc đã đọc rồi (idempotent), hoặc không tồn tại
	return s.FindOneById(ctx, id)
}

// MarkAllRead đánh dấu đã đọc toàn bộ thông báo chưa đọc của recipient.
// Idempotent: lần gọi thứ hai trả về 0.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	now := time.Now().UnixMilli()
	filter := bson.M{"recipient": recipient, "isRead": false}
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": now}}
	return s.UpdateMany(ctx, filter, update, nil)
}

// Feed trả về thông báo của một actor, gộp cả thông báo gửi theo role,
// mới nhất trước.
func (s *NotificationService) Feed(ctx context.Context, actorID, actorRole string, unreadOnly bool, page, limit int64) (*basemodels.PaginateResult[notifmodels.Notification], error) {
	recipients := []string{actorID}
	if actorRole != "" {
		recipients = append(recipients, actorRole)
	}
	filter := bson.M{"recipient": bson.M{"$in": recipients}}
	if unreadOnly {
		filter["isRead"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}
