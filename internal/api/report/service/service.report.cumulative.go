// Package reportsvc - Aggregation Engine: tổng hợp N báo cáo approved của một
// (region, period) thành một CumulativeReport với delta giữa hai kỳ, insight
// từ narrator và confidence tất định.
package reportsvc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	basesvc "ambassador_hub/internal/api/base/service"
	"ambassador_hub/internal/api/events"
	reportmodels "ambassador_hub/internal/api/report/models"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Narrator sinh insight từ metrics và deltas. Có thể là rules engine tất định
// (internal/insight) hay một model sinh text; engine chỉ yêu cầu đúng shape
// và tự validate metric được tham chiếu.
type Narrator interface {
	Narrate(metrics map[string]float64, deltas map[string]reportmodels.Delta) ([]reportmodels.Insight, error)
}

// MetricReducer khai báo cách merge một metric qua nhiều báo cáo nguồn.
// Kind "sum" cộng dồn; "weightedAvg" lấy trung bình có trọng số theo
// WeightMetric (trọng số 1 cho mỗi báo cáo nếu WeightMetric rỗng).
type MetricReducer struct {
	Kind         string // "sum" | "weightedAvg"
	WeightMetric string // Metric dùng làm trọng số cho weightedAvg
}

// metricReducers là bảng reducer khai báo theo metric. Metric không có trong
// bảng mặc định được cộng dồn.
var metricReducers = map[string]MetricReducer{
	"contentCount":   {Kind: "sum"},
	"eventsHosted":   {Kind: "sum"},
	"newMembers":     {Kind: "sum"},
	"socialReach":    {Kind: "sum"},
	"expenses":       {Kind: "sum"},
	"engagementRate": {Kind: "weightedAvg", WeightMetric: "socialReach"},
	"rating":         {Kind: "weightedAvg"},
}

// CumulativeReportService service cho bảng cumulative_reports.
type CumulativeReportService struct {
	*basesvc.BaseServiceMongoImpl[reportmodels.CumulativeReport]
	reports  *MonthlyReportService
	narrator Narrator
}

// NewCumulativeReportService tạo mới CumulativeReportService với narrator được inject.
func NewCumulativeReportService(narrator Narrator) (*CumulativeReportService, error) {
	coll, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.CumulativeReports)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.CumulativeReports, common.ErrNotFound)
	}
	reports, err := NewMonthlyReportService()
	if err != nil {
		return nil, err
	}
	return &CumulativeReportService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[reportmodels.CumulativeReport](coll),
		reports:              reports,
		narrator:             narrator,
	}, nil
}

// Generate tổng hợp tất cả MonthlyReport approved của (region, period).
// Idempotent: cùng tập đầu vào và narrator tất định cho cùng metrics,
// deltas, confidence. Nếu generation mới nhất chưa sent thì ghi đè lên nó;
// nếu đã sent thì tạo generation mới, bản sent là immutable.
func (s *CumulativeReportService) Generate(ctx context.Context, region, periodKey string) (reportmodels.CumulativeReport, error) {
	var zero reportmodels.CumulativeReport

	period, err := reportmodels.ParsePeriodKey(periodKey)
	if err != nil {
		return zero, common.WithDetails(common.ErrInvalidFormat, err.Error())
	}

	// Chỉ báo cáo approved được vào tổng hợp — dữ liệu chưa duyệt không bao
	// giờ xuất hiện trong summary vùng.
	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	sources, err := s.reports.Find(ctx, bson.M{
		"region":    region,
		"periodKey": periodKey,
		"status":    reportmodels.ReportStatusApproved,
		"deletedAt": bson.M{"$exists": false},
	}, findOpts)
	if err != nil {
		return zero, err
	}
	if len(sources) == 0 {
		return zero, common.WithDetails(common.ErrNoApprovedReports, bson.M{
			"region":    region,
			"periodKey": periodKey,
		})
	}

	metricsCurrent := MergeMetrics(sources)

	// Kỳ trước: lấy generation mới nhất của (region, kỳ liền trước) nếu có.
	var metricsPrevious map[string]float64
	prior, err := s.findLatestGeneration(ctx, region, period.Previous().Key())
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return zero, err
	}
	if err == nil {
		metricsPrevious = prior.MetricsCurrent
	}

	deltas := ComputeDeltas(metricsCurrent, metricsPrevious)
	confidence := ComputeConfidence(sources)

	insights, err := s.narrator.Narrate(metricsCurrent, deltas)
	if err != nil {
		return zero, common.WithDetails(common.ErrRenderFailure, err.Error())
	}
	insights = filterInsights(insights, metricsCurrent)

	sourceIds := make([]primitive.ObjectID, 0, len(sources))
	for _, src := range sources {
		sourceIds = append(sourceIds, src.ID)
	}

	generation, err := s.nextGeneration(ctx, region, periodKey)
	if err != nil {
		return zero, err
	}

	report := reportmodels.CumulativeReport{
		Region:           region,
		Period:           period,
		PeriodKey:        periodKey,
		Generation:       generation,
		GenerationKey:    reportmodels.BuildGenerationKey(region, periodKey, generation),
		SourceReportIds:  sourceIds,
		MetricsCurrent:   metricsCurrent,
		MetricsPrevious:  metricsPrevious,
		PercentageDeltas: deltas,
		Insights:         insights,
		Confidence:       confidence,
		Status:           reportmodels.CumulativeStatusReady,
	}

	saved, err := s.Upsert(ctx, bson.M{"generationKey": report.GenerationKey}, report)
	if err != nil {
		return zero, err
	}

	events.EmitLifecycleEvent(ctx, events.LifecycleEvent{
		Type:      events.EventCumulativeGenerated,
		ReportID:  saved.ID.Hex(),
		ToStatus:  saved.Status,
		Timestamp: time.Now().UnixMilli(),
		Extra: map[string]interface{}{
			"region":      region,
			"periodKey":   periodKey,
			"generation":  generation,
			"sourceCount": len(sources),
		},
	})
	return saved, nil
}

// Send gửi báo cáo tổng hợp đến danh sách người nhận.
// Yêu cầu status == ready; gọi lần hai nhận AlreadySent. Sau khi sent,
// báo cáo là immutable trừ metadata audit.
func (s *CumulativeReportService) Send(ctx context.Context, id primitive.ObjectID, recipients []string, actorID string) (reportmodels.CumulativeReport, error) {
	var zero reportmodels.CumulativeReport

	if len(recipients) == 0 {
		return zero, common.ErrRequiredField
	}

	now := time.Now().UnixMilli()
	filter := bson.M{
		"_id":    id,
		"status": reportmodels.CumulativeStatusReady,
	}
	update := bson.M{"$set": bson.M{
		"status": reportmodels.CumulativeStatusSent,
		"sentTo": recipients,
		"sentAt": now,
	}}

	updated, err := s.FindOneAndUpdate(ctx, filter, update, nil)
	if err == nil {
		events.EmitLifecycleEvent(ctx, events.LifecycleEvent{
			Type:       events.EventCumulativeSent,
			ReportID:   updated.ID.Hex(),
			FromStatus: reportmodels.CumulativeStatusReady,
			ToStatus:   reportmodels.CumulativeStatusSent,
			ActorID:    actorID,
			Timestamp:  now,
			Extra: map[string]interface{}{
				"recipients": recipients,
				"region":     updated.Region,
				"periodKey":  updated.PeriodKey,
			},
		})
		return updated, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return zero, err
	}

	current, fetchErr := s.FindOneById(ctx, id)
	if fetchErr != nil {
		return zero, fetchErr
	}
	if current.Status == reportmodels.CumulativeStatusSent {
		return zero, common.WithDetails(common.ErrAlreadySent, bson.M{
			"sentAt": current.SentAt,
			"sentTo": current.SentTo,
		})
	}
	return zero, common.WithDetails(common.ErrInvalidTransition, bson.M{
		"fromStatus": current.Status,
		"toStatus":   reportmodels.CumulativeStatusSent,
	})
}

// findLatestGeneration trả về generation mới nhất của (region, periodKey).
func (s *CumulativeReportService) findLatestGeneration(ctx context.Context, region, periodKey string) (reportmodels.CumulativeReport, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "generation", Value: -1}})
	return s.FindOne(ctx, bson.M{"region": region, "periodKey": periodKey}, opts)
}

// nextGeneration xác định generation sẽ ghi: ghi đè generation chưa sent,
// tăng lên khi generation mới nhất đã sent.
func (s *CumulativeReportService) nextGeneration(ctx context.Context, region, periodKey string) (int64, error) {
	latest, err := s.findLatestGeneration(ctx, region, periodKey)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 1, nil
		}
		return 0, err
	}
	if latest.Status == reportmodels.CumulativeStatusSent {
		return latest.Generation + 1, nil
	}
	return latest.Generation, nil
}

// MergeMetrics merge metric của các báo cáo nguồn theo bảng reducer khai báo.
// Hàm thuần — không đọc/ghi trạng thái ngoài.
func MergeMetrics(sources []reportmodels.MonthlyReport) map[string]float64 {
	// Gom tên metric xuất hiện trong bất kỳ nguồn nào, sort để tất định.
	names := make(map[string]bool)
	for _, src := range sources {
		for name := range src.Payload.Metrics {
			names[name] = true
		}
	}
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	merged := make(map[string]float64, len(ordered))
	for _, name := range ordered {
		reducer, ok := metricReducers[name]
		if !ok {
			reducer = MetricReducer{Kind: "sum"}
		}

		switch reducer.Kind {
		case "weightedAvg":
			var weightedSum, weightTotal float64
			for _, src := range sources {
				value, has := src.Payload.Metrics[name]
				if !has {
					continue
				}
				weight := 1.0
				if reducer.WeightMetric != "" {
					weight = src.Payload.Metrics[reducer.WeightMetric]
				}
				weightedSum += value * weight
				weightTotal += weight
			}
			if weightTotal > 0 {
				merged[name] = weightedSum / weightTotal
			} else {
				merged[name] = 0
			}
		default: // sum
			var total float64
			for _, src := range sources {
				total += src.Payload.Metrics[name]
			}
			merged[name] = total
		}
	}
	return merged
}

// ComputeDeltas tính biến động phần trăm giữa hai kỳ cho các metric có mặt
// ở cả hai. previous == 0 && current == 0 cho delta 0; previous == 0 &&
// current > 0 đánh dấu IsNew thay vì chia cho 0.
func ComputeDeltas(current, previous map[string]float64) map[string]reportmodels.Delta {
	deltas := make(map[string]reportmodels.Delta)
	if previous == nil {
		return deltas
	}
	for name, cur := range current {
		prev, has := previous[name]
		if !has {
			continue
		}
		switch {
		case prev == 0 && cur == 0:
			deltas[name] = reportmodels.Delta{Pct: 0}
		case prev == 0:
			deltas[name] = reportmodels.Delta{IsNew: true}
		default:
			deltas[name] = reportmodels.Delta{Pct: (cur - prev) / prev * 100}
		}
	}
	return deltas
}

// ComputeConfidence tính điểm tin cậy 0–100, hàm thuần tất định của đầu vào:
//
//	confidence = clamp(40 + 15*n - 10*m, 0, 100)
//
// với n = số báo cáo nguồn, m = số nguồn thiếu trường định tính
// (testimonials, qualitative impact). Penalty trừ TRƯỚC khi chặn trần:
// mỗi nguồn thêm vào đóng góp ròng ít nhất +5 (15 - 10) nên điểm không
// bao giờ giảm khi có thêm nguồn. Không ngẫu nhiên để regenerate tái lập
// được.
func ComputeConfidence(sources []reportmodels.MonthlyReport) int {
	penalty := 0
	for _, src := range sources {
		if !src.HasNarrativeFields() {
			penalty += 10
		}
	}
	confidence := 40 + 15*len(sources) - penalty
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// filterInsights loại bỏ insight tham chiếu metric không tồn tại trong
// đầu vào — narrator là black box, engine không tin output của nó.
func filterInsights(insights []reportmodels.Insight, metrics map[string]float64) []reportmodels.Insight {
	valid := make([]reportmodels.Insight, 0, len(insights))
	for _, ins := range insights {
		if ins.Metric != "" {
			if _, ok := metrics[ins.Metric]; !ok {
				continue
			}
		}
		valid = append(valid, ins)
	}
	return valid
}
