package insight

import (
	"testing"

	reportmodels "ambassador_hub/internal/api/report/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrate_GrowthThresholds(t *testing.T) {
	n := NewRulesNarrator()

	insights, err := n.Narrate(
		map[string]float64{"newMembers": 125, "socialReach": 500},
		map[string]reportmodels.Delta{
			"newMembers":  {Pct: 30},  // tăng mạnh
			"socialReach": {Pct: 15},  // tăng đáng kể
		},
	)
	require.NoError(t, err)
	require.Len(t, insights, 2)

	// Duyệt theo tên metric đã sort: newMembers trước socialReach
	assert.Equal(t, reportmodels.InsightTypeSuccess, insights[0].Type)
	assert.Equal(t, reportmodels.InsightImpactHigh, insights[0].Impact)
	assert.Equal(t, "newMembers", insights[0].Metric)

	assert.Equal(t, reportmodels.InsightTypeSuccess, insights[1].Type)
	assert.Equal(t, reportmodels.InsightImpactMedium, insights[1].Impact)
}

func TestNarrate_DeclineThresholds(t *testing.T) {
	n := NewRulesNarrator()

	insights, err := n.Narrate(
		map[string]float64{"contentCount": 2, "eventsHosted": 1},
		map[string]reportmodels.Delta{
			"contentCount": {Pct: -30}, // giảm mạnh
			"eventsHosted": {Pct: -15}, // giảm đáng kể
		},
	)
	require.NoError(t, err)
	require.Len(t, insights, 2)

	assert.Equal(t, reportmodels.InsightTypeConcern, insights[0].Type)
	assert.Equal(t, reportmodels.InsightImpactHigh, insights[0].Impact)
	assert.Equal(t, reportmodels.InsightTypeConcern, insights[1].Type)
	assert.Equal(t, reportmodels.InsightImpactMedium, insights[1].Impact)
}

func TestNarrate_SmallChangesProduceNothing(t *testing.T) {
	n := NewRulesNarrator()

	insights, err := n.Narrate(
		map[string]float64{"newMembers": 102},
		map[string]reportmodels.Delta{"newMembers": {Pct: 2}},
	)
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestNarrate_NewMetricIsOpportunity(t *testing.T) {
	n := NewRulesNarrator()

	insights, err := n.Narrate(
		map[string]float64{"eventsHosted": 3},
		map[string]reportmodels.Delta{"eventsHosted": {IsNew: true}},
	)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, reportmodels.InsightTypeOpportunity, insights[0].Type)
	assert.Equal(t, "eventsHosted", insights[0].Metric)
}

func TestNarrate_LowRatingRecommendation(t *testing.T) {
	n := NewRulesNarrator()

	insights, err := n.Narrate(
		map[string]float64{"rating": 2.4},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, reportmodels.InsightTypeRecommendation, insights[0].Type)
	assert.Equal(t, "rating", insights[0].Metric)
}

func TestNarrate_LowEngagementWithLargeReach(t *testing.T) {
	n := NewRulesNarrator()

	insights, err := n.Narrate(
		map[string]float64{"engagementRate": 0.5, "socialReach": 5000},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, reportmodels.InsightTypeRecommendation, insights[0].Type)
	assert.Equal(t, "engagementRate", insights[0].Metric)

	// Reach nhỏ thì không khuyến nghị
	insights, err = n.Narrate(
		map[string]float64{"engagementRate": 0.5, "socialReach": 200},
		nil,
	)
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestNarrate_Deterministic(t *testing.T) {
	n := NewRulesNarrator()
	metrics := map[string]float64{"newMembers": 216, "rating": 2.1, "socialReach": 9000, "engagementRate": 0.3}
	deltas := map[string]reportmodels.Delta{
		"newMembers":  {Pct: 42},
		"socialReach": {IsNew: true},
		"rating":      {Pct: -30},
	}

	first, err := n.Narrate(metrics, deltas)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := n.Narrate(metrics, deltas)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNarrate_AllReferencedMetricsExist(t *testing.T) {
	// Mọi insight phải tham chiếu metric có trong đầu vào —
	// engine sẽ lọc bỏ insight lạ, narrator chuẩn không được phát sinh chúng
	n := NewRulesNarrator()
	metrics := map[string]float64{"newMembers": 10, "rating": 1.5}
	deltas := map[string]reportmodels.Delta{"newMembers": {Pct: 100}}

	insights, err := n.Narrate(metrics, deltas)
	require.NoError(t, err)
	for _, insight := range insights {
		_, ok := metrics[insight.Metric]
		assert.True(t, ok, "insight tham chiếu metric không tồn tại: %s", insight.Metric)
	}
}
