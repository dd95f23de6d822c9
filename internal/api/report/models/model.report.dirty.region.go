// Package models - DirtyRegion thuộc domain Report.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DirtyRegion đánh dấu (region, period) cần tổng hợp lại (dirty_regions).
// Được tạo bởi event handler khi một MonthlyReport đạt approved; worker
// tổng hợp đọc các mark chưa xử lý (processedAt = null) theo thứ tự markedAt.
type DirtyRegion struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`                                                               // MongoDB _id
	Region      string             `json:"region" bson:"region" index:"compound:dirty_region_period,compound:dirty_unprocessed"`              // Vùng cần tổng hợp lại
	PeriodKey   string             `json:"periodKey" bson:"periodKey" index:"compound:dirty_region_period,compound:dirty_unprocessed"`        // Vd: 2024-03
	MarkedAt    int64              `json:"markedAt" bson:"markedAt" index:"compound:dirty_worker_marked,order:1"`                             // Unix milliseconds — sort cho worker
	ProcessedAt *int64             `json:"processedAt,omitempty" bson:"processedAt,omitempty" index:"single:1,compound:dirty_unprocessed,compound:dirty_worker_marked"` // null = chưa xử lý
}
