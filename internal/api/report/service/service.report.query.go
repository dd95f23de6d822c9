// Package reportsvc - Query/Filter Layer: biên dịch bộ lọc danh sách báo cáo
// (search, status, region, khoảng kỳ) thành filter MongoDB và phục vụ qua
// pagination của base service.
package reportsvc

import (
	"context"
	"regexp"

	basemodels "ambassador_hub/internal/api/base/models"
	reportdto "ambassador_hub/internal/api/report/dto"
	reportmodels "ambassador_hub/internal/api/report/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BuildQueryFilter biên dịch ReportQueryInput thành filter MongoDB.
// Hàm thuần, tách riêng để test không cần database.
func BuildQueryFilter(input reportdto.ReportQueryInput) bson.M {
	filter := bson.M{
		"deletedAt": bson.M{"$exists": false},
	}

	if input.Status != "" {
		filter["status"] = input.Status
	}
	if input.Region != "" {
		filter["region"] = input.Region
	}
	if input.AuthorID != "" {
		filter["authorId"] = input.AuthorID
	}

	if input.PeriodFrom != "" || input.PeriodTo != "" {
		periodRange := bson.M{}
		if input.PeriodFrom != "" {
			periodRange["$gte"] = input.PeriodFrom
		}
		if input.PeriodTo != "" {
			periodRange["$lte"] = input.PeriodTo
		}
		filter["periodKey"] = periodRange
	}

	if input.Search != "" {
		// Escape regex đặc biệt để search term là literal text
		quoted := regexp.QuoteMeta(input.Search)
		filter["$or"] = []bson.M{
			{"authorName": bson.M{"$regex": quoted, "$options": "i"}},
			{"payload.executiveSummary": bson.M{"$regex": quoted, "$options": "i"}},
		}
	}

	return filter
}

// Query trả về danh sách báo cáo theo bộ lọc, phân trang, mới nhất trước.
func (s *MonthlyReportService) Query(ctx context.Context, input reportdto.ReportQueryInput) (*basemodels.PaginateResult[reportmodels.MonthlyReport], error) {
	filter := BuildQueryFilter(input)

	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}
