package worker

import (
	"context"
	"time"

	exportsvc "ambassador_hub/internal/api/export/service"
	"ambassador_hub/internal/logger"
)

// ExportCleanupWorker dọn các export job đã kết thúc (completed/failed/cancelled)
// quá hạn lưu trữ, tránh collection export_jobs phình ra vô hạn.
type ExportCleanupWorker struct {
	jobs     *exportsvc.ExportJobService
	interval time.Duration
	ttl      time.Duration
}

// NewExportCleanupWorker tạo mới ExportCleanupWorker.
// Tham số:
//   - interval: chu kỳ dọn (mặc định 1 giờ nếu < 1 phút)
//   - ttl: tuổi thọ job sau khi kết thúc (mặc định 7 ngày nếu <= 0)
func NewExportCleanupWorker(interval, ttl time.Duration) (*ExportCleanupWorker, error) {
	jobs, err := exportsvc.NewExportJobService()
	if err != nil {
		return nil, err
	}

	if interval < time.Minute {
		interval = time.Hour
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &ExportCleanupWorker{
		jobs:     jobs,
		interval: interval,
		ttl:      ttl,
	}, nil
}

// Start chạy vòng dọn cho đến khi ctx bị hủy.
func (w *ExportCleanupWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
		"ttl":      w.ttl.String(),
	}).Info("🧹 [EXPORT_CLEANUP] Worker dọn export job khởi động")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [EXPORT_CLEANUP] Worker dọn export job dừng")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [EXPORT_CLEANUP] Panic khi dọn job, tiếp tục ở lần sau")
					}
				}()

				deletedCount, err := w.jobs.CleanupTerminal(ctx, w.ttl)
				if err != nil {
					log.WithError(err).Error("🧹 [EXPORT_CLEANUP] Dọn export job thất bại")
					return
				}
				if deletedCount > 0 {
					log.WithFields(map[string]interface{}{
						"deletedCount": deletedCount,
					}).Info("🧹 [EXPORT_CLEANUP] Đã dọn export job quá hạn")
				}
			}()
		}
	}
}
