// Package reportdto - DTO cho domain Report (tầng transport).
package reportdto

import "ambassador_hub/internal/api/report/models"

// MonthlyReportCreateInput dùng cho tạo báo cáo tháng (luôn khởi tạo ở draft).
type MonthlyReportCreateInput struct {
	AuthorID   string               `json:"authorId" validate:"required"`
	AuthorName string               `json:"authorName"`
	Region     string               `json:"region" validate:"required"`
	Period     models.Period        `json:"period" validate:"required"`
	Payload    models.ReportPayload `json:"payload"`
}

// MonthlyReportUpdateInput dùng cho tác giả sửa payload khi còn draft.
type MonthlyReportUpdateInput struct {
	AuthorName string               `json:"authorName"`
	Payload    models.ReportPayload `json:"payload"`
}

// SubmitInput dùng cho thao tác submit báo cáo.
type SubmitInput struct {
	Version int64 `json:"version" validate:"required,min=1"` // Version mong đợi (optimistic concurrency)
}

// ClaimInput dùng cho reviewer nhận xử lý báo cáo.
type ClaimInput struct {
	Version int64 `json:"version" validate:"required,min=1"`
}

// DecideInput dùng cho reviewer ra quyết định.
type DecideInput struct {
	Version  int64  `json:"version" validate:"required,min=1"`
	Outcome  string `json:"outcome" validate:"required,oneof=approved rejected revision_requested"`
	Feedback string `json:"feedback"` // Bắt buộc khi outcome != approved (kiểm tra ở service)
	Rating   *int   `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
}

// ResubmitInput dùng cho tác giả nộp lại sau revision_requested.
type ResubmitInput struct {
	Version int64                `json:"version" validate:"required,min=1"`
	Payload models.ReportPayload `json:"payload"`
}

// GenerateInput dùng cho yêu cầu tổng hợp theo (region, period).
type GenerateInput struct {
	Region    string `json:"region" validate:"required"`
	PeriodKey string `json:"periodKey" validate:"required,period_key"` // Vd: 2024-03
}

// SendInput dùng cho gửi báo cáo tổng hợp đến người nhận.
type SendInput struct {
	Recipients []string `json:"recipients" validate:"required,min=1,dive,email"`
}

// ReportQueryInput là bộ lọc của Query/Filter Layer cho danh sách báo cáo.
type ReportQueryInput struct {
	Search     string `query:"search"`                                              // Tìm trong authorName và executiveSummary
	Status     string `query:"status" validate:"omitempty,report_status"`           // Lọc theo trạng thái
	Region     string `query:"region"`                                              // Lọc theo vùng
	AuthorID   string `query:"authorId"`                                            // Lọc theo tác giả
	PeriodFrom string `query:"periodFrom" validate:"omitempty,period_key"`          // Từ kỳ (YYYY-MM)
	PeriodTo   string `query:"periodTo" validate:"omitempty,period_key"`            // Đến kỳ (YYYY-MM)
	Page       int64  `query:"page"`
	Limit      int64  `query:"limit"`
}
