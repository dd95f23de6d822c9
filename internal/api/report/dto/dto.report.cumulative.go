// Package reportdto - DTO cho Cumulative Report (CRUD).
// Cumulative report do Aggregation Engine tạo; API đọc là chính.
package reportdto

import "ambassador_hub/internal/api/report/models"

// CumulativeReportCreateInput dùng cho tạo cumulative report (tầng transport).
type CumulativeReportCreateInput struct {
	Region          string             `json:"region" validate:"required"`
	Period          models.Period      `json:"period" validate:"required"`
	MetricsCurrent  map[string]float64 `json:"metricsCurrent" validate:"required"`
	MetricsPrevious map[string]float64 `json:"metricsPrevious,omitempty"`
	Insights        []models.Insight   `json:"insights,omitempty"`
	Confidence      int                `json:"confidence" validate:"min=0,max=100"`
}

// CumulativeReportUpdateInput dùng cho cập nhật cumulative report (tầng transport).
type CumulativeReportUpdateInput struct {
	Insights   []models.Insight `json:"insights,omitempty"`
	Confidence *int             `json:"confidence,omitempty" validate:"omitempty,min=0,max=100"`
}

// DirtyRegionCreateInput dùng cho tạo dirty mark thủ công (hiếm dùng — engine tự tạo).
type DirtyRegionCreateInput struct {
	Region    string `json:"region" validate:"required"`
	PeriodKey string `json:"periodKey" validate:"required,period_key"`
}

// DirtyRegionUpdateInput dùng cho cập nhật dirty mark (tầng transport).
type DirtyRegionUpdateInput struct {
	ProcessedAt *int64 `json:"processedAt,omitempty"`
}
