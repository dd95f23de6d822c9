package worker

import (
	"context"
	"errors"
	"time"

	reportsvc "ambassador_hub/internal/api/report/service"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/logger"
)

// CumulativeRefreshWorker quét hàng đợi dirty_regions và tổng hợp lại
// CumulativeReport cho từng (region, period) có báo cáo mới được duyệt.
// Chạy định kỳ theo interval, mỗi lần xử lý tối đa batchSize vùng.
type CumulativeRefreshWorker struct {
	dirty      *reportsvc.DirtyRegionService
	cumulative *reportsvc.CumulativeReportService
	interval   time.Duration
	batchSize  int64
}

// NewCumulativeRefreshWorker tạo mới CumulativeRefreshWorker.
// Tham số:
//   - narrator: nguồn insight cho Aggregation Engine
//   - interval: chu kỳ quét (mặc định 1 phút nếu < 10 giây)
//   - batchSize: số vùng dirty xử lý mỗi lần quét (mặc định 10)
func NewCumulativeRefreshWorker(narrator reportsvc.Narrator, interval time.Duration, batchSize int64) (*CumulativeRefreshWorker, error) {
	dirty, err := reportsvc.NewDirtyRegionService()
	if err != nil {
		return nil, err
	}
	cumulative, err := reportsvc.NewCumulativeReportService(narrator)
	if err != nil {
		return nil, err
	}

	if interval < 10*time.Second {
		interval = 1 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 10
	}

	return &CumulativeRefreshWorker{
		dirty:      dirty,
		cumulative: cumulative,
		interval:   interval,
		batchSize:  batchSize,
	}, nil
}

// Start chạy vòng quét cho đến khi ctx bị hủy.
func (w *CumulativeRefreshWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"batchSize": w.batchSize,
	}).Info("📊 [CUMULATIVE_REFRESH] Worker tổng hợp khởi động")

	for {
		select {
		case <-ctx.Done():
			log.Info("📊 [CUMULATIVE_REFRESH] Worker tổng hợp dừng")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("📊 [CUMULATIVE_REFRESH] Panic trong lần quét, tiếp tục ở lần sau")
					}
				}()
				w.refreshDirtyRegions(ctx)
			}()
		}
	}
}

// refreshDirtyRegions xử lý một batch vùng dirty: generate rồi đánh dấu đã xử lý.
// Lỗi của một vùng không chặn các vùng còn lại.
func (w *CumulativeRefreshWorker) refreshDirtyRegions(ctx context.Context) {
	log := logger.GetAppLogger()

	entries, err := w.dirty.FindUnprocessed(ctx, w.batchSize)
	if err != nil {
		log.WithError(err).Error("📊 [CUMULATIVE_REFRESH] Không đọc được hàng đợi dirty")
		return
	}
	if len(entries) == 0 {
		return
	}

	processed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		_, err := w.cumulative.Generate(ctx, entry.Region, entry.PeriodKey)
		if err != nil && !errors.Is(err, common.ErrNoApprovedReports) {
			// Vùng lỗi giữ nguyên trong hàng đợi để thử lại lần sau
			log.WithError(err).WithFields(map[string]interface{}{
				"region":    entry.Region,
				"periodKey": entry.PeriodKey,
			}).Warn("📊 [CUMULATIVE_REFRESH] Tổng hợp vùng thất bại")
			continue
		}

		if err := w.dirty.MarkProcessed(ctx, entry.ID); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"region":    entry.Region,
				"periodKey": entry.PeriodKey,
			}).Warn("📊 [CUMULATIVE_REFRESH] Không đánh dấu được vùng đã xử lý")
			continue
		}
		processed++
	}

	if processed > 0 {
		log.WithFields(map[string]interface{}{
			"processedCount": processed,
			"batchCount":     len(entries),
		}).Info("📊 [CUMULATIVE_REFRESH] Đã tổng hợp xong batch vùng dirty")
	}
}
