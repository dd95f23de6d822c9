// Package reportsvc - hook đăng ký xử lý lifecycle event để đánh dấu vùng dirty.
package reportsvc

import (
	"context"

	"ambassador_hub/internal/api/events"
	"ambassador_hub/internal/logger"
)

func init() {
	events.OnLifecycleEvent(handleReportLifecycle)
}

// handleReportLifecycle đánh dấu (region, periodKey) dirty khi một báo cáo
// được approve, để worker tổng hợp regenerate CumulativeReport của vùng đó.
// Chạy fire-and-forget: lỗi chỉ được log, không ảnh hưởng transition.
func handleReportLifecycle(ctx context.Context, e events.LifecycleEvent) {
	if e.Type != events.EventReportApproved {
		return
	}

	region, _ := e.Extra["region"].(string)
	periodKey, _ := e.Extra["periodKey"].(string)
	if region == "" || periodKey == "" {
		return
	}

	dirtySvc, err := NewDirtyRegionService()
	if err != nil {
		logger.GetAppLogger().WithError(err).Warn("Không khởi tạo được DirtyRegionService trong hook approve")
		return
	}
	if err := dirtySvc.MarkDirty(ctx, region, periodKey); err != nil {
		logger.GetAppLogger().WithError(err).WithField("region", region).WithField("periodKey", periodKey).
			Warn("Đánh dấu vùng dirty thất bại")
	}
}
