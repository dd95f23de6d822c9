package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodKey(t *testing.T) {
	// Month lưu 0-based, key hiển thị 1-based
	assert.Equal(t, "2024-03", Period{Month: 2, Year: 2024}.Key())
	assert.Equal(t, "2024-01", Period{Month: 0, Year: 2024}.Key())
	assert.Equal(t, "2024-12", Period{Month: 11, Year: 2024}.Key())
}

func TestPeriodPrevious(t *testing.T) {
	assert.Equal(t, Period{Month: 1, Year: 2024}, Period{Month: 2, Year: 2024}.Previous())

	// Qua ranh giới năm
	assert.Equal(t, Period{Month: 11, Year: 2023}, Period{Month: 0, Year: 2024}.Previous())
}

func TestParsePeriodKey(t *testing.T) {
	p, err := ParsePeriodKey("2024-03")
	require.NoError(t, err)
	assert.Equal(t, Period{Month: 2, Year: 2024}, p)

	// Round-trip
	assert.Equal(t, "2024-03", p.Key())

	for _, bad := range []string{"", "2024", "2024-13", "2024-00", "abc-de", "03-2024"} {
		_, err := ParsePeriodKey(bad)
		assert.Error(t, err, "khóa kỳ %q phải bị từ chối", bad)
	}
}

func TestHasCompletePayload(t *testing.T) {
	report := MonthlyReport{
		Period: Period{Month: 2, Year: 2024},
		Payload: ReportPayload{
			ExecutiveSummary: "Tháng 3 tổ chức 2 sự kiện",
		},
	}
	assert.True(t, report.HasCompletePayload())

	// Thiếu executive summary
	report.Payload.ExecutiveSummary = ""
	assert.False(t, report.HasCompletePayload())

	// Thiếu kỳ
	report.Payload.ExecutiveSummary = "đủ"
	report.Period = Period{}
	assert.False(t, report.HasCompletePayload())
}

func TestHasNarrativeFields(t *testing.T) {
	report := MonthlyReport{
		Payload: ReportPayload{
			Testimonials:      []string{"chương trình rất ý nghĩa"},
			QualitativeImpact: "gắn kết cộng đồng",
		},
	}
	assert.True(t, report.HasNarrativeFields())

	report.Payload.Testimonials = nil
	assert.False(t, report.HasNarrativeFields())

	report.Payload.Testimonials = []string{"x"}
	report.Payload.QualitativeImpact = ""
	assert.False(t, report.HasNarrativeFields())
}
