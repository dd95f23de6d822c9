// Package export chứa pipeline render file cho export_jobs: renderer tạo
// file kết quả, processor chạy nền poll job pending và điều phối render.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Document nội dung báo cáo đã chuẩn hóa để render, độc lập với loại báo cáo.
type Document struct {
	Title    string      // Tiêu đề báo cáo
	Subtitle string      // Dòng phụ (vùng, kỳ, tác giả...)
	Metrics  []MetricRow // Bảng số liệu, giữ thứ tự
	Sections []Section   // Các phần văn bản
}

// MetricRow một dòng số liệu trong bảng export.
type MetricRow struct {
	Name  string
	Value string
}

// Section một phần văn bản của báo cáo.
type Section struct {
	Heading string
	Body    string
}

// Renderer render một Document thành file theo format và trả về download URL.
type Renderer interface {
	Render(ctx context.Context, doc Document, format string) (downloadURL string, err error)
}

// LocalFileRenderer ghi file export vào thư mục cục bộ, phục vụ qua /exports.
type LocalFileRenderer struct {
	outputDir string
	urlPrefix string
}

// NewLocalFileRenderer tạo renderer ghi file vào outputDir.
// urlPrefix là path mà server mount thư mục này (ví dụ "/exports").
func NewLocalFileRenderer(outputDir, urlPrefix string) (*LocalFileRenderer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("tạo thư mục export %s: %w", outputDir, err)
	}
	return &LocalFileRenderer{outputDir: outputDir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Render ghi Document ra file với tên ngẫu nhiên và trả về URL tải xuống.
func (r *LocalFileRenderer) Render(ctx context.Context, doc Document, format string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%s.%s", uuid.NewString(), format)
	filePath := filepath.Join(r.outputDir, fileName)

	var err error
	switch format {
	case "csv", "xlsx":
		// xlsx dùng chung layout bảng với csv
		err = r.renderCSV(filePath, doc)
	case "pdf", "docx":
		err = r.renderText(filePath, doc)
	default:
		return "", fmt.Errorf("format không được hỗ trợ: %s", format)
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", r.urlPrefix, fileName), nil
}

// renderCSV ghi bảng số liệu dạng CSV: header, metrics, rồi các section.
func (r *LocalFileRenderer) renderCSV(filePath string, doc Document) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("tạo file %s: %w", filePath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	records := [][]string{
		{"title", doc.Title},
		{"subtitle", doc.Subtitle},
	}
	for _, m := range doc.Metrics {
		records = append(records, []string{m.Name, m.Value})
	}
	for _, s := range doc.Sections {
		records = append(records, []string{s.Heading, s.Body})
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("ghi CSV %s: %w", filePath, err)
	}
	return nil
}

// renderText ghi báo cáo dạng văn bản có cấu trúc cho các format tài liệu.
func (r *LocalFileRenderer) renderText(filePath string, doc Document) error {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteString("\n")
	b.WriteString(doc.Subtitle)
	b.WriteString("\n\n")

	if len(doc.Metrics) > 0 {
		b.WriteString("SỐ LIỆU\n")
		for _, m := range doc.Metrics {
			b.WriteString(fmt.Sprintf("  %s: %s\n", m.Name, m.Value))
		}
		b.WriteString("\n")
	}
	for _, s := range doc.Sections {
		b.WriteString(strings.ToUpper(s.Heading))
		b.WriteString("\n")
		b.WriteString(s.Body)
		b.WriteString("\n\n")
	}

	if err := os.WriteFile(filePath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("ghi file %s: %w", filePath, err)
	}
	return nil
}
