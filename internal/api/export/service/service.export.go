// Package exportsvc - Service cho domain Export (export_jobs).
//
// Vòng đời job:
//
//	pending → processing → completed
//	                     → failed
//	pending/processing → cancelled
//
// Mọi chuyển trạng thái đều là compare-and-set trên status để job đã terminal
// không bao giờ bị ghi đè: completion đến muộn của job đã hủy bị bỏ qua.
package exportsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basesvc "ambassador_hub/internal/api/base/service"
	"ambassador_hub/internal/api/events"
	exportmodels "ambassador_hub/internal/api/export/models"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExportJobService service CRUD + nghiệp vụ cho bảng export_jobs.
type ExportJobService struct {
	*basesvc.BaseServiceMongoImpl[exportmodels.ExportJob]
}

// NewExportJobService tạo mới ExportJobService.
func NewExportJobService() (*ExportJobService, error) {
	coll, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.ExportJobs)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.ExportJobs, common.ErrNotFound)
	}
	return &ExportJobService{BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[exportmodels.ExportJob](coll)}, nil
}

// RequestExport tạo job pending mới. Job được trả về ngay, render chạy nền.
func (s *ExportJobService) RequestExport(ctx context.Context, targetID primitive.ObjectID, targetType, format, requestedBy string) (exportmodels.ExportJob, error) {
	job := exportmodels.ExportJob{
		TargetReportID:   targetID,
		TargetReportType: targetType,
		Format:           format,
		Status:           exportmodels.JobStatusPending,
		Progress:         0,
		RequestedBy:      requestedBy,
	}
	return s.InsertOne(ctx, job)
}

// Cancel hủy một job khi còn pending hoặc processing.
// Job đã terminal trả về lỗi phân loại theo trạng thái hiện tại.
func (s *ExportJobService) Cancel(ctx context.Context, jobID primitive.ObjectID) (exportmodels.ExportJob, error) {
	now := time.Now().UnixMilli()
	filter := bson.M{
		"_id":    jobID,
		"status": bson.M{"$in": []string{exportmodels.JobStatusPending, exportmodels.JobStatusProcessing}},
	}
	update := bson.M{"$set": bson.M{
		"status":      exportmodels.JobStatusCancelled,
		"completedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	job, err := s.FindOneAndUpdate(ctx, filter, update, opts)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return job, err
	}

	// CAS trượt: phân loại theo trạng thái thật của job
	current, ferr := s.FindOneById(ctx, jobID)
	if ferr != nil {
		return current, common.ErrJobNotFound
	}
	if current.Status == exportmodels.JobStatusCancelled {
		return current, common.ErrCancelled
	}
	return current, common.WithDetails(common.ErrInvalidTransition, bson.M{
		"currentStatus": current.Status,
	})
}

// ClaimNextPending lấy job pending cũ nhất và chuyển sang processing.
// Trả về common.ErrNotFound khi hàng đợi trống.
func (s *ExportJobService) ClaimNextPending(ctx context.Context) (exportmodels.ExportJob, error) {
	filter := bson.M{"status": exportmodels.JobStatusPending}
	update := bson.M{"$set": bson.M{"status": exportmodels.JobStatusProcessing}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)
	return s.FindOneAndUpdate(ctx, filter, update, opts)
}

// UpdateProgress ghi tiến độ mới cho job đang processing.
// Filter kèm điều kiện progress $lte để tiến độ không bao giờ giảm.
// Job đã bị hủy trả về common.ErrCancelled — tín hiệu để processor dừng.
func (s *ExportJobService) UpdateProgress(ctx context.Context, jobID primitive.ObjectID, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filter := bson.M{
		"_id":      jobID,
		"status":   exportmodels.JobStatusProcessing,
		"progress": bson.M{"$lte": progress},
	}
	update := bson.M{"$set": bson.M{"progress": progress}}

	_, err := s.FindOneAndUpdate(ctx, filter, update, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	current, ferr := s.FindOneById(ctx, jobID)
	if ferr != nil {
		return common.ErrJobNotFound
	}
	if current.Status == exportmodels.JobStatusCancelled {
		return common.ErrCancelled
	}
	if current.Progress > progress {
		// Ghi tiến độ lùi — bỏ qua, giữ giá trị lớn hơn
		return nil
	}
	return common.WithDetails(common.ErrInvalidTransition, bson.M{
		"currentStatus": current.Status,
	})
}

// Complete chốt job thành completed với URL file kết quả.
// CAS trên status processing: nếu job đã bị hủy trong lúc render,
// kết quả bị bỏ qua và trả về common.ErrCancelled.
func (s *ExportJobService) Complete(ctx context.Context, jobID primitive.ObjectID, downloadURL string) (exportmodels.ExportJob, error) {
	now := time.Now().UnixMilli()
	filter := bson.M{"_id": jobID, "status": exportmodels.JobStatusProcessing}
	update := bson.M{"$set": bson.M{
		"status":      exportmodels.JobStatusCompleted,
		"progress":    100,
		"downloadUrl": downloadURL,
		"completedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	job, err := s.FindOneAndUpdate(ctx, filter, update, opts)
	if err == nil {
		s.emitTerminal(ctx, events.EventExportCompleted, job)
		return job, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return job, err
	}

	current, ferr := s.FindOneById(ctx, jobID)
	if ferr != nil {
		return current, common.ErrJobNotFound
	}
	if current.Status == exportmodels.JobStatusCancelled {
		return current, common.ErrCancelled
	}
	return current, common.WithDetails(common.ErrInvalidTransition, bson.M{
		"currentStatus": current.Status,
	})
}

// Fail chốt job thành failed kèm thông tin lỗi. CAS trên status processing.
func (s *ExportJobService) Fail(ctx context.Context, jobID primitive.ObjectID, reason string) (exportmodels.ExportJob, error) {
	now := time.Now().UnixMilli()
	filter := bson.M{"_id": jobID, "status": exportmodels.JobStatusProcessing}
	update := bson.M{"$set": bson.M{
		"status":      exportmodels.JobStatusFailed,
		"error":       reason,
		"completedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	job, err := s.FindOneAndUpdate(ctx, filter, update, opts)
	if err == nil {
		s.emitTerminal(ctx, events.EventExportFailed, job)
		return job, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return job, err
	}

	current, ferr := s.FindOneById(ctx, jobID)
	if ferr != nil {
		return current, common.ErrJobNotFound
	}
	if current.Status == exportmodels.JobStatusCancelled {
		return current, common.ErrCancelled
	}
	return current, common.WithDetails(common.ErrInvalidTransition, bson.M{
		"currentStatus": current.Status,
	})
}

// IsCancelled kiểm tra cờ hủy của job — processor gọi trước mỗi bước render.
func (s *ExportJobService) IsCancelled(ctx context.Context, jobID primitive.ObjectID) (bool, error) {
	job, err := s.FindOneById(ctx, jobID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, common.ErrJobNotFound
		}
		return false, err
	}
	return job.Status == exportmodels.JobStatusCancelled, nil
}

// CleanupTerminal xóa các job đã terminal quá hạn lưu trữ.
func (s *ExportJobService) CleanupTerminal(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	filter := bson.M{
		"status": bson.M{"$in": []string{
			exportmodels.JobStatusCompleted,
			exportmodels.JobStatusFailed,
			exportmodels.JobStatusCancelled,
		}},
		"completedAt": bson.M{"$lt": cutoff},
	}
	return s.DeleteMany(ctx, filter)
}

// emitTerminal phát lifecycle event khi job kết thúc, phục vụ dispatcher thông báo.
func (s *ExportJobService) emitTerminal(ctx context.Context, eventType string, job exportmodels.ExportJob) {
	events.EmitLifecycleEvent(ctx, events.LifecycleEvent{
		Type:      eventType,
		ReportID:  job.TargetReportID.Hex(),
		ToStatus:  job.Status,
		ActorID:   job.RequestedBy,
		Timestamp: time.Now().UnixMilli(),
		Extra: map[string]interface{}{
			"jobId":       job.ID.Hex(),
			"format":      job.Format,
			"downloadUrl": job.DownloadURL,
			"error":       job.Error,
		},
	})
}
