// Package reportsvc - máy trạng thái của MonthlyReport (Status Engine).
//
// Đồ thị chuyển trạng thái (khởi tạo draft; approved và rejected là terminal):
//
//	draft              -> submitted            (tác giả submit, payload phải đủ)
//	submitted          -> under_review         (reviewer claim)
//	submitted          -> approved | rejected | revision_requested
//	under_review       -> approved | rejected | revision_requested
//	revision_requested -> submitted            (tác giả resubmit, version += 1)
//
// Mọi mutation là một FindOneAndUpdate CAS trên {_id, version, status};
// bên thua cuộc re-fetch để phân loại lỗi (StaleVersion / AlreadyClaimed /
// InvalidTransition). Transition thành công phát LifecycleEvent cho
// Notification Dispatcher; phát event là fire-and-forget.
package reportsvc

import (
	"context"
	"errors"
	"time"

	"ambassador_hub/internal/api/events"
	reportmodels "ambassador_hub/internal/api/report/models"
	"ambassador_hub/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// validTransitions liệt kê các cạnh hợp lệ của máy trạng thái.
var validTransitions = map[string][]string{
	reportmodels.ReportStatusDraft:             {reportmodels.ReportStatusSubmitted},
	reportmodels.ReportStatusSubmitted:         {reportmodels.ReportStatusUnderReview, reportmodels.ReportStatusApproved, reportmodels.ReportStatusRejected, reportmodels.ReportStatusRevisionRequested},
	reportmodels.ReportStatusUnderReview:       {reportmodels.ReportStatusApproved, reportmodels.ReportStatusRejected, reportmodels.ReportStatusRevisionRequested},
	reportmodels.ReportStatusRevisionRequested: {reportmodels.ReportStatusSubmitted},
}

// CanTransition kiểm tra cạnh (from, to) có nằm trong đồ thị hợp lệ không.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Submit chuyển báo cáo từ draft sang submitted.
// Yêu cầu: actor là tác giả, payload đủ completeness tối thiểu
// (executive summary không rỗng, kỳ đã set), version khớp.
// Validation chạy trước khi ghi — thất bại không để lại partial state.
func (s *MonthlyReportService) Submit(ctx context.Context, id primitive.ObjectID, actorID string, expectedVersion int64) (reportmodels.MonthlyReport, error) {
	var zero reportmodels.MonthlyReport

	current, err := s.FindOneById(ctx, id)
	if err != nil {
		return zero, err
	}
	if current.Version != expectedVersion {
		return zero, common.ErrStaleVersion
	}
	if current.Status != reportmodels.ReportStatusDraft {
		return zero, common.WithDetails(common.ErrInvalidTransition, bson.M{
			"fromStatus": current.Status,
			"toStatus":   reportmodels.ReportStatusSubmitted,
		})
	}
	if current.AuthorID != actorID {
		return zero, common.WithDetails(common.ErrInvalidTransition, bson.M{
			"reason": "chỉ tác giả báo cáo mới được submit",
		})
	}
	if !current.HasCompletePayload() {
		return zero, common.ErrIncompletePayload
	}

	now := time.Now().UnixMilli()
	filter := bson.M{
		"_id":     id,
		"version": expectedVersion,
		"status":  reportmodels.ReportStatusDraft,
	}
	update := bson.M{"$set": bson.M{
		"status":      reportmodels.ReportStatusSubmitted,
		"submittedAt": now,
	}}

	updated, err := s.FindOneAndUpdate(ctx, filter, update, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return zero, s.classifyCASFailure(ctx, id, actorID, expectedVersion, reportmodels.ReportStatusDraft)
		}
		return zero, err
	}

	s.emitTransition(ctx, events.EventReportSubmitted, updated, reportmodels.ReportStatusDraft, actorID)
	return updated, nil
}

// ClaimForReview cho reviewer nhận xử lý một báo cáo đã submitted.
// Hai reviewer claim đồng thời: đúng một người thắng CAS; người thua thấy
// status đã là under_review và nhận AlreadyClaimed kèm reviewer hiện tại
// để UI hiển thị "đang được X review".
func (s *MonthlyReportService) ClaimForReview(ctx context.Context, id primitive.ObjectID, reviewerID string, expectedVersion int64) (reportmodels.MonthlyReport, error) {
	var zero reportmodels.MonthlyReport

	filter := bson.M{
		"_id":     id,
		"version": expectedVersion,
		"status":  reportmodels.ReportStatusSubmitted,
	}
	update := bson.M{"$set": bson.M{
		"status":     reportmodels.ReportStatusUnderReview,
		"reviewerId": reviewerID,
	}}

	updated, err := s.FindOneAndUpdate(ctx, filter, update, nil)
	if err == nil {
		s.emitTransition(ctx, events.EventReportClaimed, updated, reportmodels.ReportStatusSubmitted, reviewerID)
		return updated, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return zero, err
	}

	current, fetchErr := s.FindOneById(ctx, id)
	if fetchErr != nil {
		return zero, fetchErr
	}
	if current.Status == reportmodels.ReportStatusUnderReview {
		return zero, common.WithDetails(common.ErrAlreadyClaimed, bson.M{
			"reviewerId": current.ReviewerID,
		})
	}
	if current.Version != expectedVersion {
		return zero, common.ErrStaleVersion
	}
	return zero, common.WithDetails(common.ErrInvalidTransition, bson.M{
		"fromStatus": current.Status,
		"toStatus":   reportmodels.ReportStatusUnderReview,
	})
}

// Decide ra quyết định cho một báo cáo ở submitted hoặc under_review.
// Feedback bắt buộc khi outcome khác approved. Rejected và revision_requested
// là hai kết cục phân biệt: rejected là terminal, revision_requested cho
// phép tác giả resubmit.
func (s *MonthlyReportService) Decide(ctx context.Context, id primitive.ObjectID, reviewerID, outcome, feedback string, rating *int, expectedVersion int64) (reportmodels.MonthlyReport, error) {
	var zero reportmodels.MonthlyReport

	if outcome != reportmodels.ReportStatusApproved &&
		outcome != reportmodels.ReportStatusRejected &&
		outcome != reportmodels.ReportStatusRevisionRequested {
		return zero, common.WithDetails(common.ErrInvalidTransition, bson.M{
			"reason":  "outcome không hợp lệ",
			"outcome": outcome,
		})
	}
	if outcome != reportmodels.ReportStatusApproved && feedback == "" {
		return zero, common.WithDetails(common.ErrIncompletePayload, bson.M{
			"reason": "feedback bắt buộc khi không approve",
		})
	}
	if rating != nil && (*rating < 0 || *rating > 5) {
		return zero, common.ErrInvalidInput
	}

	// Đọc trước để biết fromStatus cho lifecycle event; CAS bên dưới vẫn là
	// nguồn chân lý về tính atomic.
	before, err := s.FindOneById(ctx, id)
	if err != nil {
		return zero, err
	}
	if before.Version != expectedVersion {
		return zero, common.ErrStaleVersion
	}
	if !CanTransition(before.Status, outcome) {
		return zero, common.WithDetails(common.ErrInvalidTransition, bson.M{
			"fromStatus": before.Status,
			"toStatus":   outcome,
		})
	}

	now := time.Now().UnixMilli()
	set := bson.M{
		"status":     outcome,
		"reviewedAt": now,
		"reviewerId": reviewerID,
	}
	if feedback != "" {
		set["reviewerFeedback"] = feedback
	}
	if rating != nil {
		set["rating"] = *rating
	}

	filter := bson.M{
		"_id":     id,
		"version": expectedVersion,
		"status": bson.M{"$in": []string{
			reportmodels.ReportStatusSubmitted,
			reportmodels.ReportStatusUnderReview,
		}},
	}

	updated, err := s.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, nil)
	if err == nil {
		eventType := events.EventReportApproved
		switch outcome {
		case reportmodels.ReportStatusRejected:
			eventType = events.EventReportRejected
		case reportmodels.ReportStatusRevisionRequested:
			eventType = events.EventRevisionRequested
		}
		s.emitTransition(ctx, eventType, updated, before.Status, reviewerID)
		return updated, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return zero, err
	}

	current, fetchErr := s.FindOneById(ctx, id)
	if fetchErr != nil {
		return zero, fetchErr
	}
	if current.Version != expectedVersion {
		return zero, common.ErrStaleVersion
	}
	return zero, common.WithDetails(common.ErrInvalidTransition, bson.M{
		"fromStatus": current.Status,
		"toStatus":   outcome,
	})
}

// ResubmitAfterRevision cho tác giả nộp lại sau revision_requested.
// Thay payload, tăng version đúng 1, quay về submitted và xóa dấu vết
// review của vòng trước (reviewedAt, reviewerId, reviewerFeedback).
func (s *MonthlyReportService) ResubmitAfterRevision(ctx context.Context, id primitive.ObjectID, actorID string, newPayload reportmodels.ReportPayload, expectedVersion int64) (reportmodels.MonthlyReport, error) {
	var zero reportmodels.MonthlyReport

	if newPayload.ExecutiveSummary == "" {
		return zero, common.ErrIncompletePayload
	}

	now := time.Now().UnixMilli()
	filter := bson.M{
		"_id":      id,
		"authorId": actorID,
		"version":  expectedVersion,
		"status":   reportmodels.ReportStatusRevisionRequested,
	}
	update := bson.M{
		"$set": bson.M{
			"payload":     newPayload,
			"status":      reportmodels.ReportStatusSubmitted,
			"submittedAt": now,
		},
		"$unset": bson.M{
			"reviewedAt":       "",
			"reviewerId":       "",
			"reviewerFeedback": "",
		},
		"$inc": bson.M{"version": 1},
	}

	updated, err := s.FindOneAndUpdate(ctx, filter, update, nil)
	if err == nil {
		s.emitTransition(ctx, events.EventReportResubmitted, updated, reportmodels.ReportStatusRevisionRequested, actorID)
		return updated, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return zero, err
	}
	return zero, s.classifyCASFailure(ctx, id, actorID, expectedVersion, reportmodels.ReportStatusRevisionRequested)
}

// emitTransition phát lifecycle event sau một transition đã commit.
func (s *MonthlyReportService) emitTransition(ctx context.Context, eventType string, report reportmodels.MonthlyReport, fromStatus, actorID string) {
	events.EmitLifecycleEvent(ctx, events.LifecycleEvent{
		Type:       eventType,
		ReportID:   report.ID.Hex(),
		FromStatus: fromStatus,
		ToStatus:   report.Status,
		ActorID:    actorID,
		Timestamp:  time.Now().UnixMilli(),
		Extra: map[string]interface{}{
			"authorId":  report.AuthorID,
			"region":    report.Region,
			"periodKey": report.PeriodKey,
		},
	})
}
