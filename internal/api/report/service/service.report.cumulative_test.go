package reportsvc

import (
	"testing"

	reportmodels "ambassador_hub/internal/api/report/models"

	"github.com/stretchr/testify/assert"
)

// sourceWithMetrics tạo báo cáo nguồn tối thiểu cho test tổng hợp.
func sourceWithMetrics(metrics map[string]float64) reportmodels.MonthlyReport {
	return reportmodels.MonthlyReport{
		Payload: reportmodels.ReportPayload{Metrics: metrics},
	}
}

func TestMergeMetrics_SumMetrics(t *testing.T) {
	sources := []reportmodels.MonthlyReport{
		sourceWithMetrics(map[string]float64{"newMembers": 127, "contentCount": 4}),
		sourceWithMetrics(map[string]float64{"newMembers": 89, "contentCount": 6}),
	}

	merged := MergeMetrics(sources)
	assert.Equal(t, 216.0, merged["newMembers"])
	assert.Equal(t, 10.0, merged["contentCount"])
}

func TestMergeMetrics_WeightedAverageByReach(t *testing.T) {
	// engagementRate lấy trung bình trọng số theo socialReach:
	// (2% * 1000 + 8% * 3000) / 4000 = 6.5%
	sources := []reportmodels.MonthlyReport{
		sourceWithMetrics(map[string]float64{"engagementRate": 2, "socialReach": 1000}),
		sourceWithMetrics(map[string]float64{"engagementRate": 8, "socialReach": 3000}),
	}

	merged := MergeMetrics(sources)
	assert.InDelta(t, 6.5, merged["engagementRate"], 1e-9)
	assert.Equal(t, 4000.0, merged["socialReach"])
}

func TestMergeMetrics_RatingPlainAverage(t *testing.T) {
	// rating không có weight metric nên mỗi báo cáo nặng như nhau
	sources := []reportmodels.MonthlyReport{
		sourceWithMetrics(map[string]float64{"rating": 4}),
		sourceWithMetrics(map[string]float64{"rating": 5}),
	}

	merged := MergeMetrics(sources)
	assert.InDelta(t, 4.5, merged["rating"], 1e-9)
}

func TestMergeMetrics_MissingMetricSkippedInAverage(t *testing.T) {
	// Báo cáo không có engagementRate không kéo trung bình về 0
	sources := []reportmodels.MonthlyReport{
		sourceWithMetrics(map[string]float64{"engagementRate": 5, "socialReach": 2000}),
		sourceWithMetrics(map[string]float64{"socialReach": 1000}),
	}

	merged := MergeMetrics(sources)
	assert.InDelta(t, 5.0, merged["engagementRate"], 1e-9)
}

func TestMergeMetrics_UnknownMetricDefaultsToSum(t *testing.T) {
	sources := []reportmodels.MonthlyReport{
		sourceWithMetrics(map[string]float64{"customMetric": 3}),
		sourceWithMetrics(map[string]float64{"customMetric": 7}),
	}

	merged := MergeMetrics(sources)
	assert.Equal(t, 10.0, merged["customMetric"])
}

func TestComputeDeltas(t *testing.T) {
	current := map[string]float64{
		"newMembers":   150,
		"expenses":     0,
		"socialReach":  500,
		"contentCount": 8,
	}
	previous := map[string]float64{
		"newMembers":  100,
		"expenses":    0,
		"socialReach": 0,
		// contentCount không có ở kỳ trước
	}

	deltas := ComputeDeltas(current, previous)

	// Tăng 50%
	assert.InDelta(t, 50.0, deltas["newMembers"].Pct, 1e-9)
	assert.False(t, deltas["newMembers"].IsNew)

	// Cả hai kỳ bằng 0 -> delta 0, không phải metric mới
	assert.Equal(t, reportmodels.Delta{Pct: 0, IsNew: false}, deltas["expenses"])

	// Kỳ trước 0, kỳ này > 0 -> sentinel IsNew thay cho chia 0
	assert.True(t, deltas["socialReach"].IsNew)
	assert.Equal(t, 0.0, deltas["socialReach"].Pct)

	// Metric chỉ có ở một kỳ thì không có delta
	_, has := deltas["contentCount"]
	assert.False(t, has)
}

func TestComputeDeltas_NoPreviousPeriod(t *testing.T) {
	deltas := ComputeDeltas(map[string]float64{"newMembers": 10}, nil)
	assert.Empty(t, deltas)
}

func TestComputeConfidence(t *testing.T) {
	full := reportmodels.MonthlyReport{
		Payload: reportmodels.ReportPayload{
			Testimonials:      []string{"rất tốt"},
			QualitativeImpact: "cộng đồng sôi động hơn",
		},
	}
	sparse := reportmodels.MonthlyReport{}

	// 1 nguồn đầy đủ: 40 + 15 = 55
	assert.Equal(t, 55, ComputeConfidence([]reportmodels.MonthlyReport{full}))

	// 2 nguồn, 1 thiếu định tính: 40 + 30 - 10 = 60
	assert.Equal(t, 60, ComputeConfidence([]reportmodels.MonthlyReport{full, sparse}))

	// 5 nguồn đầy đủ: 40 + 75 = 115 -> chặn 100
	many := []reportmodels.MonthlyReport{full, full, full, full, full}
	assert.Equal(t, 100, ComputeConfidence(many))

	// Không nguồn nào: 40 (hàm chỉ gọi khi có nguồn, nhưng vẫn tất định)
	assert.Equal(t, 40, ComputeConfidence(nil))
}

func TestComputeConfidence_NeverDecreasesWithMoreSources(t *testing.T) {
	full := reportmodels.MonthlyReport{
		Payload: reportmodels.ReportPayload{
			Testimonials:      []string{"rất tốt"},
			QualitativeImpact: "cộng đồng sôi động hơn",
		},
	}
	sparse := reportmodels.MonthlyReport{}

	// Thêm nguồn thứ 6 thiếu định tính vào 5 nguồn đầy đủ đang đạt 100:
	// penalty trừ trước trần nên điểm giữ nguyên 100, không tụt
	five := []reportmodels.MonthlyReport{full, full, full, full, full}
	assert.Equal(t, 100, ComputeConfidence(five))
	assert.Equal(t, 100, ComputeConfidence(append(five, sparse)))

	// Tổng quát: thêm dần nguồn (đầy đủ hoặc thiếu) điểm không bao giờ giảm
	sources := []reportmodels.MonthlyReport{}
	prev := ComputeConfidence(sources)
	for i := 0; i < 12; i++ {
		if i%2 == 0 {
			sources = append(sources, sparse)
		} else {
			sources = append(sources, full)
		}
		score := ComputeConfidence(sources)
		assert.GreaterOrEqual(t, score, prev, "thêm nguồn thứ %d làm giảm điểm", i+1)
		prev = score
	}
}

func TestComputeConfidence_Deterministic(t *testing.T) {
	sources := []reportmodels.MonthlyReport{
		{Payload: reportmodels.ReportPayload{Testimonials: []string{"a"}, QualitativeImpact: "b"}},
		{},
		{},
	}
	first := ComputeConfidence(sources)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeConfidence(sources))
	}
}

func TestFilterInsights_DropsUnknownMetricReferences(t *testing.T) {
	metrics := map[string]float64{"newMembers": 216, "rating": 4.5}
	insights := []reportmodels.Insight{
		{Type: reportmodels.InsightTypeSuccess, Metric: "newMembers", Text: "tăng trưởng tốt"},
		{Type: reportmodels.InsightTypeConcern, Metric: "churnRate", Text: "metric bịa"},
		{Type: reportmodels.InsightTypeRecommendation, Metric: "", Text: "nhận định chung không gắn metric"},
	}

	valid := filterInsights(insights, metrics)

	assert.Len(t, valid, 2)
	assert.Equal(t, "newMembers", valid[0].Metric)
	assert.Equal(t, "", valid[1].Metric)
}

func TestBuildGenerationKey(t *testing.T) {
	assert.Equal(t, "north|2024-03|1", reportmodels.BuildGenerationKey("north", "2024-03", 1))
	assert.Equal(t, "north|2024-03|2", reportmodels.BuildGenerationKey("north", "2024-03", 2))
}
