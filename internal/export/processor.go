package export

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"
	"time"

	exportmodels "ambassador_hub/internal/api/export/models"
	exportsvc "ambassador_hub/internal/api/export/service"
	reportsvc "ambassador_hub/internal/api/report/service"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/logger"
)

// maxJobsPerTick giới hạn số job xử lý trong một lần poll.
const maxJobsPerTick = 20

// Processor poll các job pending, render file và chốt kết quả.
// Hủy là cooperative: trước mỗi bước progress và trước completion đều đi qua
// CAS trên status processing, nên kết quả của job đã hủy bị bỏ qua.
type Processor struct {
	jobs       *exportsvc.ExportJobService
	monthly    *reportsvc.MonthlyReportService
	cumulative *reportsvc.CumulativeReportService
	renderer   Renderer
	interval   time.Duration
}

// NewProcessor tạo processor với chu kỳ poll. interval < 1s sẽ dùng 5s.
func NewProcessor(jobs *exportsvc.ExportJobService, monthly *reportsvc.MonthlyReportService, cumulative *reportsvc.CumulativeReportService, renderer Renderer, interval time.Duration) *Processor {
	if interval < time.Second {
		interval = 5 * time.Second
	}
	return &Processor{
		jobs:       jobs,
		monthly:    monthly,
		cumulative: cumulative,
		renderer:   renderer,
		interval:   interval,
	}
}

// Start chạy vòng poll cho đến khi ctx bị hủy.
func (p *Processor) Start(ctx context.Context) {
	log := logger.GetAppLogger()
	log.Infof("📦 [EXPORT] Processor khởi động, chu kỳ poll %v", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("📦 [EXPORT] Processor dừng")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Errorf("📦 [EXPORT] Panic trong tick: %v\n%s", r, debug.Stack())
					}
				}()
				p.drainPending(ctx)
			}()
		}
	}
}

// drainPending lấy lần lượt các job pending và xử lý, tối đa maxJobsPerTick.
func (p *Processor) drainPending(ctx context.Context) {
	log := logger.GetAppLogger()
	for i := 0; i < maxJobsPerTick; i++ {
		if ctx.Err() != nil {
			return
		}
		job, err := p.jobs.ClaimNextPending(ctx)
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				log.WithError(err).Warn("📦 [EXPORT] Không lấy được job pending")
			}
			return
		}
		p.process(ctx, job)
	}
}

// process render một job; mọi nhánh đều chốt job về terminal state.
func (p *Processor) process(ctx context.Context, job exportmodels.ExportJob) {
	log := logger.GetAppLogger()
	log.Infof("📦 [EXPORT] Xử lý job %s: %s/%s → %s", job.ID.Hex(), job.TargetReportType, job.TargetReportID.Hex(), job.Format)

	if !p.step(ctx, job, 10) {
		return
	}

	doc, err := p.buildDocument(ctx, job)
	if err != nil {
		p.fail(ctx, job, fmt.Sprintf("không lấy được báo cáo nguồn: %v", err))
		return
	}

	if !p.step(ctx, job, 40) {
		return
	}

	downloadURL, err := p.renderer.Render(ctx, doc, job.Format)
	if err != nil {
		p.fail(ctx, job, fmt.Sprintf("render thất bại: %v", err))
		return
	}

	if !p.step(ctx, job, 90) {
		return
	}

	if _, err := p.jobs.Complete(ctx, job.ID, downloadURL); err != nil {
		if errors.Is(err, common.ErrCancelled) {
			// Job bị hủy trong lúc render: bỏ kết quả, không ghi đè trạng thái
			log.Infof("📦 [EXPORT] Job %s đã hủy, bỏ qua kết quả render", job.ID.Hex())
			return
		}
		log.WithError(err).Warnf("📦 [EXPORT] Không chốt được job %s", job.ID.Hex())
		return
	}
	log.Infof("📦 [EXPORT] Job %s hoàn tất: %s", job.ID.Hex(), downloadURL)
}

// step ghi tiến độ; trả về false khi job đã bị hủy hoặc không ghi được.
func (p *Processor) step(ctx context.Context, job exportmodels.ExportJob, progress int) bool {
	err := p.jobs.UpdateProgress(ctx, job.ID, progress)
	if err == nil {
		return true
	}
	log := logger.GetAppLogger()
	if errors.Is(err, common.ErrCancelled) {
		log.Infof("📦 [EXPORT] Job %s đã hủy, dừng xử lý", job.ID.Hex())
	} else {
		log.WithError(err).Warnf("📦 [EXPORT] Không ghi được tiến độ job %s", job.ID.Hex())
	}
	return false
}

// fail chốt job thành failed, nuốt lỗi hủy muộn.
func (p *Processor) fail(ctx context.Context, job exportmodels.ExportJob, reason string) {
	log := logger.GetAppLogger()
	if _, err := p.jobs.Fail(ctx, job.ID, reason); err != nil && !errors.Is(err, common.ErrCancelled) {
		log.WithError(err).Warnf("📦 [EXPORT] Không chốt failed cho job %s", job.ID.Hex())
		return
	}
	log.Warnf("📦 [EXPORT] Job %s thất bại: %s", job.ID.Hex(), reason)
}

// buildDocument lấy báo cáo nguồn và chuẩn hóa thành Document.
func (p *Processor) buildDocument(ctx context.Context, job exportmodels.ExportJob) (Document, error) {
	switch job.TargetReportType {
	case exportmodels.TargetTypeMonthly:
		report, err := p.monthly.FindOneById(ctx, job.TargetReportID)
		if err != nil {
			return Document{}, err
		}
		doc := Document{
			Title:    fmt.Sprintf("Báo cáo tháng %s", report.PeriodKey),
			Subtitle: fmt.Sprintf("Ambassador %s — vùng %s — trạng thái %s", report.AuthorName, report.Region, report.Status),
			Metrics:  metricRows(report.Payload.Metrics),
			Sections: []Section{
				{Heading: "Tóm tắt", Body: report.Payload.ExecutiveSummary},
			},
		}
		for _, s := range report.Payload.ActivitySections {
			doc.Sections = append(doc.Sections, Section{Heading: s.Title, Body: s.Description})
		}
		if report.Payload.QualitativeImpact != "" {
			doc.Sections = append(doc.Sections, Section{Heading: "Tác động định tính", Body: report.Payload.QualitativeImpact})
		}
		if len(report.Payload.Testimonials) > 0 {
			doc.Sections = append(doc.Sections, Section{Heading: "Phản hồi", Body: strings.Join(report.Payload.Testimonials, "\n")})
		}
		return doc, nil

	case exportmodels.TargetTypeCumulative:
		report, err := p.cumulative.FindOneById(ctx, job.TargetReportID)
		if err != nil {
			return Document{}, err
		}
		doc := Document{
			Title:    fmt.Sprintf("Báo cáo tổng hợp vùng %s — kỳ %s", report.Region, report.PeriodKey),
			Subtitle: fmt.Sprintf("Từ %d báo cáo đã duyệt — độ tin cậy %d/100 — thế hệ %d", len(report.SourceReportIds), report.Confidence, report.Generation),
			Metrics:  metricRows(report.MetricsCurrent),
		}
		deltaNames := make([]string, 0, len(report.PercentageDeltas))
		for name := range report.PercentageDeltas {
			deltaNames = append(deltaNames, name)
		}
		sort.Strings(deltaNames)
		for _, name := range deltaNames {
			d := report.PercentageDeltas[name]
			value := fmt.Sprintf("%+.1f%%", d.Pct)
			if d.IsNew {
				value = "mới"
			}
			doc.Metrics = append(doc.Metrics, MetricRow{Name: fmt.Sprintf("Δ %s", name), Value: value})
		}
		for _, insight := range report.Insights {
			doc.Sections = append(doc.Sections, Section{
				Heading: fmt.Sprintf("%s (%s)", insight.Type, insight.Impact),
				Body:    insight.Text,
			})
		}
		return doc, nil
	}
	return Document{}, fmt.Errorf("loại báo cáo không được hỗ trợ: %s", job.TargetReportType)
}

// metricRows chuyển map số liệu thành các dòng có thứ tự ổn định.
func metricRows(metrics map[string]float64) []MetricRow {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]MetricRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, MetricRow{Name: name, Value: strconv.FormatFloat(metrics[name], 'f', -1, 64)})
	}
	return rows
}
