// Package notification chuyển lifecycle event thành thông báo in-app và email.
// Dispatcher chạy fire-and-forget qua event bus: lỗi gửi thông báo không bao
// giờ làm hỏng transition đã commit, chỉ được log lại.
package notification

import (
	"context"
	"fmt"
	"strings"

	"ambassador_hub/internal/api/events"
	notifmodels "ambassador_hub/internal/api/notification/models"
	notifsvc "ambassador_hub/internal/api/notification/service"
	"ambassador_hub/internal/logger"
	"ambassador_hub/internal/notification/channels"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// reviewerAudience là recipient cho thông báo gửi cả nhóm reviewer.
const reviewerAudience = "reviewer"

// Dispatcher lắng nghe lifecycle event và phân phối thông báo.
type Dispatcher struct {
	notifications *notifsvc.NotificationService
	email         *channels.EmailSender
}

// NewDispatcher tạo dispatcher. email có thể là sender chưa cấu hình (kênh tắt).
func NewDispatcher(notifications *notifsvc.NotificationService, email *channels.EmailSender) *Dispatcher {
	return &Dispatcher{notifications: notifications, email: email}
}

// Register gắn dispatcher vào event bus. Gọi một lần lúc khởi động.
func (d *Dispatcher) Register() {
	events.OnLifecycleEvent(d.handle)
}

// handle định tuyến từng loại event đến người nhận phù hợp.
func (d *Dispatcher) handle(ctx context.Context, e events.LifecycleEvent) {
	switch e.Type {
	case events.EventReportSubmitted, events.EventReportResubmitted:
		d.notify(ctx, e, reviewerAudience, notifmodels.TypeReportSubmitted,
			"Báo cáo chờ duyệt",
			fmt.Sprintf("Ambassador %s đã nộp báo cáo kỳ %s", e.ActorID, extraString(e, "periodKey")))

	case events.EventReportClaimed:
		d.notify(ctx, e, extraString(e, "authorId"), notifmodels.TypeReportUnderReview,
			"Báo cáo đang được xem xét",
			fmt.Sprintf("Reviewer %s đã nhận xem xét báo cáo kỳ %s của bạn", e.ActorID, extraString(e, "periodKey")))

	case events.EventReportApproved:
		d.notify(ctx, e, extraString(e, "authorId"), notifmodels.TypeReportApproved,
			"Báo cáo đã được duyệt",
			fmt.Sprintf("Báo cáo kỳ %s của bạn đã được phê duyệt", extraString(e, "periodKey")))

	case events.EventReportRejected:
		d.notify(ctx, e, extraString(e, "authorId"), notifmodels.TypeReportRejected,
			"Báo cáo bị từ chối",
			fmt.Sprintf("Báo cáo kỳ %s của bạn đã bị từ chối", extraString(e, "periodKey")))

	case events.EventRevisionRequested:
		d.notify(ctx, e, extraString(e, "authorId"), notifmodels.TypeRevisionRequested,
			"Báo cáo cần chỉnh sửa",
			fmt.Sprintf("Báo cáo kỳ %s của bạn cần chỉnh sửa và nộp lại", extraString(e, "periodKey")))

	case events.EventExportCompleted:
		d.notify(ctx, e, e.ActorID, notifmodels.TypeExportReady,
			"File export đã sẵn sàng",
			fmt.Sprintf("File %s của bạn đã sẵn sàng: %s", extraString(e, "format"), extraString(e, "downloadUrl")))

	case events.EventExportFailed:
		d.notify(ctx, e, e.ActorID, notifmodels.TypeExportFailed,
			"Export thất bại",
			fmt.Sprintf("Không tạo được file %s: %s", extraString(e, "format"), extraString(e, "error")))

	case events.EventCumulativeSent:
		d.sendCumulativeEmail(ctx, e)
	}
}

// notify ghi một thông báo in-app, log lỗi thay vì propagate.
func (d *Dispatcher) notify(ctx context.Context, e events.LifecycleEvent, recipient, notifType, title, message string) {
	if recipient == "" {
		return
	}
	relatedID, _ := primitive.ObjectIDFromHex(e.ReportID)
	if _, err := d.notifications.Notify(ctx, recipient, notifType, title, message, relatedID); err != nil {
		logger.GetAppLogger().WithError(err).WithFields(map[string]interface{}{
			"eventType": e.Type,
			"recipient": recipient,
		}).Warn("🔔 [NOTIFY] Không ghi được thông báo")
	}
}

// sendCumulativeEmail gửi email báo cáo tổng hợp đến danh sách người nhận.
func (d *Dispatcher) sendCumulativeEmail(ctx context.Context, e events.LifecycleEvent) {
	log := logger.GetAppLogger()
	recipients := extraStrings(e, "recipients")
	if len(recipients) == 0 {
		return
	}
	if !d.email.Enabled() {
		log.WithField("eventType", e.Type).Debug("🔔 [NOTIFY] Kênh email chưa cấu hình, bỏ qua")
		return
	}

	region := extraString(e, "region")
	periodKey := extraString(e, "periodKey")
	subject := fmt.Sprintf("Báo cáo tổng hợp vùng %s — kỳ %s", region, periodKey)
	body := fmt.Sprintf(
		"<p>Báo cáo tổng hợp vùng <b>%s</b> cho kỳ <b>%s</b> đã được gửi.</p><p>Người gửi: %s</p>",
		region, periodKey, e.ActorID)

	if err := d.email.Send(ctx, recipients, subject, body); err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"recipients": strings.Join(recipients, ","),
			"region":     region,
		}).Warn("🔔 [NOTIFY] Gửi email báo cáo tổng hợp thất bại")
	}
}

// extraString đọc một giá trị string từ Extra, rỗng nếu thiếu.
func extraString(e events.LifecycleEvent, key string) string {
	if e.Extra == nil {
		return ""
	}
	v, _ := e.Extra[key].(string)
	return v
}

// extraStrings đọc một danh sách string từ Extra.
func extraStrings(e events.LifecycleEvent, key string) []string {
	if e.Extra == nil {
		return nil
	}
	switch v := e.Extra[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
