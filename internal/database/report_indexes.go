// Package database - Index bổ sung không thể định nghĩa qua model tags
// (partial index, điều kiện lọc).
package database

import (
	"context"
	"strings"

	"ambassador_hub/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateReportAdditionalIndexes tạo các index bổ sung cho engine báo cáo.
// Gọi sau CreateIndexes theo model tags.
func CreateReportAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// dirty_regions: mỗi (region, periodKey) chỉ có một entry chưa xử lý —
	// partial unique để upsert MarkDirty không nhân bản hàng đợi
	dirtyRegions := db.Collection(global.MongoDB_ColNames.DirtyRegions)
	if _, err := dirtyRegions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "region", Value: 1},
			{Key: "periodKey", Value: 1},
		},
		Options: options.Index().
			SetName("dirty_region_open_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"processedAt": bson.M{"$exists": false}}),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// export_jobs: poll job pending cũ nhất — partial index chỉ trên pending
	exportJobs := db.Collection(global.MongoDB_ColNames.ExportJobs)
	if _, err := exportJobs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "createdAt", Value: 1},
		},
		Options: options.Index().
			SetName("export_job_pending_queue").
			SetPartialFilterExpression(bson.M{"status": "pending"}),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
