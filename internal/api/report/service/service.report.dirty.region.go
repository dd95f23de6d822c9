// Package reportsvc - Service CRUD cho Dirty Region (dirty_regions).
package reportsvc

import (
	"context"
	"fmt"
	"time"

	basesvc "ambassador_hub/internal/api/base/service"
	reportmodels "ambassador_hub/internal/api/report/models"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DirtyRegionService service cho bảng dirty_regions.
type DirtyRegionService struct {
	*basesvc.BaseServiceMongoImpl[reportmodels.DirtyRegion]
}

// NewDirtyRegionService tạo mới DirtyRegionService.
func NewDirtyRegionService() (*DirtyRegionService, error) {
	coll, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.DirtyRegions)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.DirtyRegions, common.ErrNotFound)
	}
	return &DirtyRegionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[reportmodels.DirtyRegion](coll),
	}, nil
}

// MarkDirty đánh dấu (region, periodKey) cần tổng hợp lại.
// Upsert theo mark chưa xử lý để nhiều lần approve trong cùng kỳ chỉ tạo
// một mark, tránh worker tổng hợp trùng.
func (s *DirtyRegionService) MarkDirty(ctx context.Context, region, periodKey string) error {
	filter := bson.M{
		"region":      region,
		"periodKey":   periodKey,
		"processedAt": bson.M{"$exists": false},
	}
	mark := reportmodels.DirtyRegion{
		Region:    region,
		PeriodKey: periodKey,
		MarkedAt:  time.Now().UnixMilli(),
	}
	_, err := s.Upsert(ctx, filter, mark)
	return err
}

// FindUnprocessed trả về các mark chưa xử lý, cũ nhất trước, tối đa limit.
func (s *DirtyRegionService) FindUnprocessed(ctx context.Context, limit int64) ([]reportmodels.DirtyRegion, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "markedAt", Value: 1}}).
		SetLimit(limit)
	return s.Find(ctx, bson.M{"processedAt": bson.M{"$exists": false}}, opts)
}

// MarkProcessed ghi nhận một mark đã được worker tổng hợp xong.
func (s *DirtyRegionService) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UnixMilli()
	_, err := s.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"processedAt": now}}, nil)
	return err
}
