package reportsvc

import (
	"testing"

	reportdto "ambassador_hub/internal/api/report/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildQueryFilter_Empty(t *testing.T) {
	filter := BuildQueryFilter(reportdto.ReportQueryInput{})

	// Luôn loại báo cáo đã soft delete
	assert.Equal(t, bson.M{"$exists": false}, filter["deletedAt"])
	assert.Len(t, filter, 1)
}

func TestBuildQueryFilter_SimpleFields(t *testing.T) {
	filter := BuildQueryFilter(reportdto.ReportQueryInput{
		Status:   "approved",
		Region:   "north",
		AuthorID: "amb-42",
	})

	assert.Equal(t, "approved", filter["status"])
	assert.Equal(t, "north", filter["region"])
	assert.Equal(t, "amb-42", filter["authorId"])
}

func TestBuildQueryFilter_PeriodRange(t *testing.T) {
	filter := BuildQueryFilter(reportdto.ReportQueryInput{
		PeriodFrom: "2024-01",
		PeriodTo:   "2024-06",
	})

	periodRange, ok := filter["periodKey"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "2024-01", periodRange["$gte"])
	assert.Equal(t, "2024-06", periodRange["$lte"])

	// Chỉ có cận dưới
	filter = BuildQueryFilter(reportdto.ReportQueryInput{PeriodFrom: "2024-03"})
	periodRange = filter["periodKey"].(bson.M)
	assert.Equal(t, "2024-03", periodRange["$gte"])
	_, hasUpper := periodRange["$lte"]
	assert.False(t, hasUpper)
}

func TestBuildQueryFilter_SearchEscapesRegex(t *testing.T) {
	filter := BuildQueryFilter(reportdto.ReportQueryInput{Search: "hội thảo (Q1)"})

	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)

	// Ký tự regex đặc biệt phải được escape thành literal
	nameCond := or[0]["authorName"].(bson.M)
	assert.Contains(t, nameCond["$regex"], `\(Q1\)`)
	assert.Equal(t, "i", nameCond["$options"])

	summaryCond := or[1]["payload.executiveSummary"].(bson.M)
	assert.Contains(t, summaryCond["$regex"], `\(Q1\)`)
}
