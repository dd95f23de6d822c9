// Package reportsvc - Service cho domain Report (monthly_reports).
package reportsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basesvc "ambassador_hub/internal/api/base/service"
	reportmodels "ambassador_hub/internal/api/report/models"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MonthlyReportService service CRUD + nghiệp vụ cho bảng monthly_reports.
// Các thao tác chuyển trạng thái nằm trong service.report.status.go.
type MonthlyReportService struct {
	*basesvc.BaseServiceMongoImpl[reportmodels.MonthlyReport]
}

// NewMonthlyReportService tạo mới MonthlyReportService.
func NewMonthlyReportService() (*MonthlyReportService, error) {
	coll, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.MonthlyReports)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.MonthlyReports, common.ErrNotFound)
	}
	return &MonthlyReportService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[reportmodels.MonthlyReport](coll),
	}, nil
}

// Create tạo báo cáo mới ở trạng thái draft.
// PeriodKey được suy ra từ Period; mỗi (authorId, periodKey) chỉ có một
// báo cáo active (unique index author_period_unique).
func (s *MonthlyReportService) Create(ctx context.Context, report reportmodels.MonthlyReport) (reportmodels.MonthlyReport, error) {
	report.Status = reportmodels.ReportStatusDraft
	report.Version = 1
	report.PeriodKey = report.Period.Key()
	report.SubmittedAt = nil
	report.ReviewedAt = nil
	report.ReviewerID = ""
	report.ReviewerFeedback = ""
	report.Rating = nil

	return s.InsertOne(ctx, report)
}

// UpdateDraft cho tác giả sửa payload khi báo cáo còn draft.
// Mỗi lần sửa payload tăng version lên 1 (CAS trên version hiện tại).
func (s *MonthlyReportService) UpdateDraft(ctx context.Context, id primitive.ObjectID, actorID string, expectedVersion int64, authorName string, payload reportmodels.ReportPayload) (reportmodels.MonthlyReport, error) {
	filter := bson.M{
		"_id":      id,
		"authorId": actorID,
		"status":   reportmodels.ReportStatusDraft,
		"version":  expectedVersion,
	}
	set := bson.M{
		"payload": payload,
	}
	if authorName != "" {
		set["authorName"] = authorName
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}

	updated, err := s.FindOneAndUpdate(ctx, filter, update, nil)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return updated, err
	}
	return updated, s.classifyCASFailure(ctx, id, actorID, expectedVersion, reportmodels.ReportStatusDraft)
}

// SoftDelete đánh dấu xóa mềm một báo cáo. Báo cáo đã được CumulativeReport
// tham chiếu không bao giờ bị xóa vật lý.
func (s *MonthlyReportService) SoftDelete(ctx context.Context, id primitive.ObjectID) (reportmodels.MonthlyReport, error) {
	now := time.Now().UnixMilli()
	update := bson.M{"$set": bson.M{"deletedAt": now}}
	return s.FindOneAndUpdate(ctx, bson.M{"_id": id, "deletedAt": bson.M{"$exists": false}}, update, nil)
}

// classifyCASFailure phân loại lý do một CAS update không khớp document:
// báo cáo không tồn tại, version cũ (StaleVersion) hay trạng thái/tác giả
// không thỏa điều kiện (InvalidTransition).
func (s *MonthlyReportService) classifyCASFailure(ctx context.Context, id primitive.ObjectID, actorID string, expectedVersion int64, requiredStatus string) error {
	current, err := s.FindOneById(ctx, id)
	if err != nil {
		return err
	}
	if current.Version != expectedVersion {
		return common.ErrStaleVersion
	}
	if requiredStatus != "" && current.Status != requiredStatus {
		return common.WithDetails(common.ErrInvalidTransition, bson.M{
			"currentStatus":  current.Status,
			"requiredStatus": requiredStatus,
		})
	}
	if actorID != "" && current.AuthorID != actorID {
		return common.WithDetails(common.ErrInvalidTransition, bson.M{
			"reason": "chỉ tác giả báo cáo mới được thực hiện thao tác này",
		})
	}
	return common.ErrStaleVersion
}
