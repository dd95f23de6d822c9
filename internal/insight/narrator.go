// Package insight sinh nhận định tất định từ metrics và deltas bằng bảng
// rule theo ngưỡng. Cùng đầu vào luôn cho cùng đầu ra, không gọi ra ngoài.
package insight

import (
	"fmt"
	"sort"

	reportmodels "ambassador_hub/internal/api/report/models"
)

// Các ngưỡng phân loại biến động (%).
const (
	strongGrowthPct  = 25.0  // Tăng mạnh → success, impact high
	growthPct        = 10.0  // Tăng đáng kể → success, impact medium
	declinePct       = -10.0 // Giảm đáng kể → concern, impact medium
	strongDeclinePct = -25.0 // Giảm mạnh → concern, impact high
)

// metricLabels tên hiển thị tiếng Việt cho các metric chuẩn.
var metricLabels = map[string]string{
	"contentCount":   "số nội dung",
	"eventsHosted":   "số sự kiện",
	"newMembers":     "thành viên mới",
	"socialReach":    "độ phủ mạng xã hội",
	"expenses":       "chi phí",
	"engagementRate": "tỷ lệ tương tác",
	"rating":         "đánh giá",
}

// RulesNarrator sinh insight theo bảng rule, không trạng thái.
type RulesNarrator struct{}

// NewRulesNarrator tạo narrator tất định mặc định của hệ thống.
func NewRulesNarrator() *RulesNarrator {
	return &RulesNarrator{}
}

// Narrate duyệt deltas theo thứ tự tên metric để kết quả ổn định,
// rồi bổ sung khuyến nghị từ metrics tuyệt đối.
func (n *RulesNarrator) Narrate(metrics map[string]float64, deltas map[string]reportmodels.Delta) ([]reportmodels.Insight, error) {
	names := make([]string, 0, len(deltas))
	for name := range deltas {
		names = append(names, name)
	}
	sort.Strings(names)

	var insights []reportmodels.Insight
	for _, name := range names {
		if insight, ok := n.deltaInsight(name, deltas[name]); ok {
			insights = append(insights, insight)
		}
	}
	insights = append(insights, n.metricInsights(metrics)...)
	return insights, nil
}

// deltaInsight phân loại biến động một metric theo ngưỡng.
func (n *RulesNarrator) deltaInsight(name string, d reportmodels.Delta) (reportmodels.Insight, bool) {
	label := metricLabel(name)

	if d.IsNew {
		return reportmodels.Insight{
			Type:   reportmodels.InsightTypeOpportunity,
			Impact: reportmodels.InsightImpactMedium,
			Metric: name,
			Text:   fmt.Sprintf("Kỳ này ghi nhận %s lần đầu tiên, nên theo dõi tiếp", label),
		}, true
	}

	switch {
	case d.Pct >= strongGrowthPct:
		return reportmodels.Insight{
			Type:   reportmodels.InsightTypeSuccess,
			Impact: reportmodels.InsightImpactHigh,
			Metric: name,
			Text:   fmt.Sprintf("%s tăng mạnh %.1f%% so với kỳ trước", capitalized(label), d.Pct),
		}, true
	case d.Pct >= growthPct:
		return reportmodels.Insight{
			Type:   reportmodels.InsightTypeSuccess,
			Impact: reportmodels.InsightImpactMedium,
			Metric: name,
			Text:   fmt.Sprintf("%s tăng %.1f%% so với kỳ trước", capitalized(label), d.Pct),
		}, true
	case d.Pct <= strongDeclinePct:
		return reportmodels.Insight{
			Type:   reportmodels.InsightTypeConcern,
			Impact: reportmodels.InsightImpactHigh,
			Metric: name,
			Text:   fmt.Sprintf("%s giảm mạnh %.1f%% so với kỳ trước", capitalized(label), -d.Pct),
		}, true
	case d.Pct <= declinePct:
		return reportmodels.Insight{
			Type:   reportmodels.InsightTypeConcern,
			Impact: reportmodels.InsightImpactMedium,
			Metric: name,
			Text:   fmt.Sprintf("%s giảm %.1f%% so với kỳ trước", capitalized(label), -d.Pct),
		}, true
	}
	return reportmodels.Insight{}, false
}

// metricInsights sinh khuyến nghị từ giá trị tuyệt đối của kỳ hiện tại.
func (n *RulesNarrator) metricInsights(metrics map[string]float64) []reportmodels.Insight {
	var insights []reportmodels.Insight

	if rating, ok := metrics["rating"]; ok && rating > 0 && rating < 3 {
		insights = append(insights, reportmodels.Insight{
			Type:   reportmodels.InsightTypeRecommendation,
			Impact: reportmodels.InsightImpactHigh,
			Metric: "rating",
			Text:   fmt.Sprintf("Đánh giá trung bình %.1f/5 đang thấp, cần rà soát chất lượng hoạt động trong vùng", rating),
		})
	}
	if engagement, ok := metrics["engagementRate"]; ok {
		if reach, hasReach := metrics["socialReach"]; hasReach && reach > 1000 && engagement < 1 {
			insights = append(insights, reportmodels.Insight{
				Type:   reportmodels.InsightTypeRecommendation,
				Impact: reportmodels.InsightImpactMedium,
				Metric: "engagementRate",
				Text:   "Độ phủ lớn nhưng tỷ lệ tương tác dưới 1%, nên điều chỉnh định dạng nội dung",
			})
		}
	}
	return insights
}

// metricLabel trả về tên hiển thị của metric, fallback về tên kỹ thuật.
func metricLabel(name string) string {
	if label, ok := metricLabels[name]; ok {
		return label
	}
	return name
}

// capitalized viết hoa ký tự đầu cho câu tiếng Việt không dấu đầu từ.
func capitalized(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	// Chỉ xử lý ASCII; nhãn bắt đầu bằng ký tự có dấu giữ nguyên
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}
