// Package models chứa các model thuộc domain Report.
package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các trạng thái của MonthlyReport. Máy trạng thái nằm trong service.report.status.go.
const (
	ReportStatusDraft             = "draft"
	ReportStatusSubmitted         = "submitted"
	ReportStatusUnderReview       = "under_review"
	ReportStatusApproved          = "approved"
	ReportStatusRejected          = "rejected"
	ReportStatusRevisionRequested = "revision_requested"
)

// Period xác định một kỳ báo cáo (month tính từ 0 theo chuẩn của client).
type Period struct {
	Month int `json:"month" bson:"month" validate:"min=0,max=11"` // 0 = tháng Một
	Year  int `json:"year" bson:"year" validate:"required,min=2000,max=2100"`
}

// Key trả về khóa kỳ dạng "YYYY-MM" dùng cho index và truy vấn.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month+1)
}

// Previous trả về kỳ liền trước (tháng 0 lùi về tháng 11 năm trước).
func (p Period) Previous() Period {
	if p.Month == 0 {
		return Period{Month: 11, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// ParsePeriodKey đọc khóa kỳ dạng "YYYY-MM" thành Period.
func ParsePeriodKey(key string) (Period, error) {
	var year, month int
	if _, err := fmt.Sscanf(key, "%4d-%2d", &year, &month); err != nil {
		return Period{}, fmt.Errorf("khóa kỳ '%s' không đúng định dạng YYYY-MM: %w", key, err)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("khóa kỳ '%s' có tháng ngoài khoảng 01-12", key)
	}
	return Period{Month: month - 1, Year: year}, nil
}

// ReportPayload là nội dung báo cáo do ambassador soạn.
// Engine chỉ quan tâm executiveSummary (kiểm tra completeness) và metrics
// (đầu vào tổng hợp); các phần còn lại là dữ liệu hiển thị.
type ReportPayload struct {
	ExecutiveSummary  string             `json:"executiveSummary" bson:"executiveSummary"`                       // Tóm tắt điều hành — bắt buộc khi submit
	ActivitySections  []ActivitySection  `json:"activitySections,omitempty" bson:"activitySections,omitempty"`   // Các mảng hoạt động trong kỳ
	Metrics           map[string]float64 `json:"metrics" bson:"metrics"`                                          // Chỉ số định lượng (newMembers, socialReach, ...)
	Expenses          map[string]float64 `json:"expenses,omitempty" bson:"expenses,omitempty"`                   // Chi phí theo hạng mục
	Testimonials      []string           `json:"testimonials,omitempty" bson:"testimonials,omitempty"`           // Trích dẫn cảm nhận (optional — ảnh hưởng confidence)
	QualitativeImpact string             `json:"qualitativeImpact,omitempty" bson:"qualitativeImpact,omitempty"` // Mô tả tác động định tính (optional — ảnh hưởng confidence)
}

// ActivitySection một mảng hoạt động trong báo cáo.
type ActivitySection struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// MonthlyReport báo cáo tháng của một ambassador (monthly_reports).
// Mỗi (authorId, periodKey) chỉ có một báo cáo active; resubmit sau
// revision_requested tăng version trên cùng một document, không tạo mới.
type MonthlyReport struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`                                                        // MongoDB _id
	AuthorID         string             `json:"authorId" bson:"authorId" validate:"required" index:"single:1,compound:author_period_unique"` // Ambassador sở hữu báo cáo
	AuthorName       string             `json:"authorName" bson:"authorName"`                                                             // Tên hiển thị
	Region           string             `json:"region" bson:"region" validate:"required" index:"single:1,compound:region_period_status"`   // Vùng của ambassador (denormalized)
	Period           Period             `json:"period" bson:"period"`                                                                     // Kỳ báo cáo (month, year)
	PeriodKey        string             `json:"periodKey" bson:"periodKey" index:"single:1,compound:author_period_unique,compound:region_period_status"` // Vd: 2024-03 — suy ra từ Period
	Status           string             `json:"status" bson:"status" default:"draft" index:"single:1,compound:region_period_status"`        // Trạng thái máy trạng thái
	Payload          ReportPayload      `json:"payload" bson:"payload"`                                                                   // Nội dung báo cáo
	SubmittedAt      *int64             `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`                                       // Unix milliseconds — set khi rời draft
	ReviewedAt       *int64             `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`                                         // Unix milliseconds — set khi có quyết định
	ReviewerID       string             `json:"reviewerId,omitempty" bson:"reviewerId,omitempty"`                                         // Reviewer đã claim/quyết định
	ReviewerFeedback string             `json:"reviewerFeedback,omitempty" bson:"reviewerFeedback,omitempty"`                             // Bắt buộc khi outcome != approved
	Rating           *int               `json:"rating,omitempty" bson:"rating,omitempty" validate:"omitempty,min=0,max=5"`                // Điểm 0–5 khi duyệt
	Version          int64              `json:"version" bson:"version" default:"1"`                                                       // Tăng trên mỗi lần sửa payload; dùng cho CAS
	DeletedAt        *int64             `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`                                           // Soft delete — không xóa vật lý khi còn được CumulativeReport tham chiếu
	CreatedAt        int64              `json:"createdAt" bson:"createdAt"`                                                               // Unix milliseconds
	UpdatedAt        int64              `json:"updatedAt" bson:"updatedAt"`                                                               // Unix milliseconds
}

// HasCompletePayload kiểm tra completeness tối thiểu trước khi submit:
// executive summary không rỗng và kỳ báo cáo đã được set.
func (r *MonthlyReport) HasCompletePayload() bool {
	return r.Payload.ExecutiveSummary != "" && r.Period.Year != 0
}

// HasNarrativeFields cho biết báo cáo có đủ các trường định tính
// (testimonials, qualitative impact) hay không — dùng khi tính confidence.
func (r *MonthlyReport) HasNarrativeFields() bool {
	return len(r.Payload.Testimonials) > 0 && r.Payload.QualitativeImpact != ""
}
