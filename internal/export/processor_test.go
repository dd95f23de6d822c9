package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricRows_StableOrderAndFormat(t *testing.T) {
	rows := metricRows(map[string]float64{
		"socialReach":    4000,
		"engagementRate": 6.5,
		"newMembers":     216,
	})

	// Sort theo tên để file export tất định
	assert.Equal(t, []MetricRow{
		{Name: "engagementRate", Value: "6.5"},
		{Name: "newMembers", Value: "216"},
		{Name: "socialReach", Value: "4000"},
	}, rows)
}

func TestMetricRows_Empty(t *testing.T) {
	assert.Empty(t, metricRows(nil))
}
