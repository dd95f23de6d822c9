// Package events - lifecycle event cho máy trạng thái báo cáo và export pipeline.
// Khác với DataChangeEvent (phát tự động từ CRUD), LifecycleEvent được service
// phát tường minh sau mỗi transition thành công, kèm đủ ngữ cảnh cho dispatcher.
package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Các loại lifecycle event.
const (
	EventReportSubmitted     = "report_submitted"
	EventReportClaimed       = "report_claimed"
	EventReportApproved      = "report_approved"
	EventReportRejected      = "report_rejected"
	EventRevisionRequested   = "revision_requested"
	EventReportResubmitted   = "report_resubmitted"
	EventCumulativeGenerated = "cumulative_generated"
	EventCumulativeSent      = "cumulative_sent"
	EventExportCompleted     = "export_completed"
	EventExportFailed        = "export_failed"
)

// LifecycleEvent mô tả một chuyển trạng thái đã commit thành công.
type LifecycleEvent struct {
	Type       string                 // Một trong các hằng Event* ở trên
	ReportID   string                 // MonthlyReport / CumulativeReport / ExportJob id liên quan
	FromStatus string                 // Trạng thái trước transition (rỗng nếu không áp dụng)
	ToStatus   string                 // Trạng thái sau transition
	ActorID    string                 // Người thực hiện
	Timestamp  int64                  // Unix milliseconds
	Extra      map[string]interface{} // Ngữ cảnh bổ sung (authorId, region, downloadUrl, ...)
}

// LifecycleHandler xử lý lifecycle event.
type LifecycleHandler func(ctx context.Context, e LifecycleEvent)

var (
	lifecycleHandlers   []LifecycleHandler
	lifecycleHandlersMu sync.RWMutex
)

// OnLifecycleEvent đăng ký handler, gọi khi init (ví dụ từ notification dispatcher).
func OnLifecycleEvent(h LifecycleHandler) {
	lifecycleHandlersMu.Lock()
	defer lifecycleHandlersMu.Unlock()
	lifecycleHandlers = append(lifecycleHandlers, h)
}

// EmitLifecycleEvent phát sự kiện fire-and-forget: mỗi handler chạy trong
// goroutine riêng với recover, lỗi của handler không bao giờ ảnh hưởng
// transition đã commit.
func EmitLifecycleEvent(ctx context.Context, e LifecycleEvent) {
	lifecycleHandlersMu.RLock()
	list := make([]LifecycleHandler, len(lifecycleHandlers))
	copy(list, lifecycleHandlers)
	lifecycleHandlersMu.RUnlock()

	for _, h := range list {
		go func(fn LifecycleHandler) {
			defer func() {
				if r := recover(); r != nil {
					// logrus dùng được cả khi logger file chưa init
					logrus.WithFields(logrus.Fields{
						"eventType": e.Type,
						"reportId":  e.ReportID,
						"panic":     r,
					}).Error("Lifecycle handler panic")
				}
			}()
			fn(ctx, e)
		}(h)
	}
}
