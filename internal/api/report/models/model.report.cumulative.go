// Package models - CumulativeReport thuộc domain Report.
package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các trạng thái của CumulativeReport.
const (
	CumulativeStatusDraft = "draft"
	CumulativeStatusReady = "ready"
	CumulativeStatusSent  = "sent"
)

// Các loại insight do narrator sinh ra.
const (
	InsightTypeSuccess        = "success"
	InsightTypeConcern        = "concern"
	InsightTypeOpportunity    = "opportunity"
	InsightTypeRecommendation = "recommendation"
)

// Các mức tác động của insight.
const (
	InsightImpactLow    = "low"
	InsightImpactMedium = "medium"
	InsightImpactHigh   = "high"
)

// Delta là biến động phần trăm của một metric giữa hai kỳ.
// IsNew = true khi kỳ trước bằng 0 và kỳ này > 0 (sentinel thay cho vô cực).
type Delta struct {
	Pct   float64 `json:"pct" bson:"pct"`     // (current - previous) / previous * 100
	IsNew bool    `json:"isNew" bson:"isNew"` // Metric mới xuất hiện trong kỳ này
}

// Insight là một nhận định của narrator về dữ liệu tổng hợp.
// Metric ghi rõ chỉ số mà nhận định tham chiếu để engine kiểm tra được
// narrator không bịa ra metric không tồn tại.
type Insight struct {
	Type   string `json:"type" bson:"type" validate:"omitempty,oneof=success concern opportunity recommendation"`
	Impact string `json:"impact" bson:"impact" validate:"omitempty,oneof=low medium high"`
	Metric string `json:"metric" bson:"metric"` // Metric được tham chiếu
	Text   string `json:"text" bson:"text"`     // Nội dung nhận định
}

// CumulativeReport báo cáo tổng hợp theo (region, period) (cumulative_reports).
// Mỗi lần regenerate sau khi bản trước đã sent tạo một generation mới,
// bản đã sent là immutable.
type CumulativeReport struct {
	ID               primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`                                     // MongoDB _id
	Region           string               `json:"region" bson:"region" index:"single:1,compound:cumulative_region_period"` // Vùng tổng hợp
	Period           Period               `json:"period" bson:"period"`                                                  // Kỳ tổng hợp
	PeriodKey        string               `json:"periodKey" bson:"periodKey" index:"compound:cumulative_region_period"`   // Vd: 2024-03
	Generation       int64                `json:"generation" bson:"generation" default:"1"`                              // Thứ tự sinh trong cùng (region, period)
	GenerationKey    string               `json:"generationKey" bson:"generationKey" index:"compound:cumulative_gen_unique"` // region|periodKey|generation — định danh tất định
	SourceReportIds  []primitive.ObjectID `json:"sourceReportIds" bson:"sourceReportIds"`                                // Các MonthlyReport đầu vào (đã sắp xếp)
	MetricsCurrent   map[string]float64   `json:"metricsCurrent" bson:"metricsCurrent"`                                  // Metric đã merge của kỳ này
	MetricsPrevious  map[string]float64   `json:"metricsPrevious,omitempty" bson:"metricsPrevious,omitempty"`            // Metric của kỳ trước (nil nếu không có)
	PercentageDeltas map[string]Delta     `json:"percentageDeltas" bson:"percentageDeltas"`                              // Biến động giữa hai kỳ
	Insights         []Insight            `json:"insights" bson:"insights"`                                              // Nhận định từ narrator (đã validate)
	Confidence       int                  `json:"confidence" bson:"confidence"`                                          // 0–100, hàm tất định của đầu vào
	Status           string               `json:"status" bson:"status" default:"ready" index:"single:1"`                  // draft | ready | sent
	SentTo           []string             `json:"sentTo,omitempty" bson:"sentTo,omitempty"`                              // Danh sách người nhận khi đã sent
	SentAt           *int64               `json:"sentAt,omitempty" bson:"sentAt,omitempty"`                              // Unix milliseconds
	CreatedAt        int64                `json:"createdAt" bson:"createdAt"`                                            // Unix milliseconds
	UpdatedAt        int64                `json:"updatedAt" bson:"updatedAt"`                                            // Unix milliseconds
}

// BuildGenerationKey tạo khóa định danh tất định cho một generation.
func BuildGenerationKey(region, periodKey string, generation int64) string {
	return fmt.Sprintf("%s|%s|%d", region, periodKey, generation)
}
