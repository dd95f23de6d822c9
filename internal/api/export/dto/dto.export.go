// Package dto định nghĩa các cấu trúc vào/ra cho domain Export.
package dto

// ExportJobCreateInput dữ liệu yêu cầu export một báo cáo.
type ExportJobCreateInput struct {
	TargetReportID   string `json:"targetReportId" validate:"required"`                              // ID báo cáo cần render
	TargetReportType string `json:"targetReportType" validate:"required,oneof=monthly cumulative"`   // monthly | cumulative
	Format           string `json:"format" validate:"required,export_format"`                        // pdf | docx | xlsx | csv
}

// ExportJobUpdateInput dữ liệu cập nhật job qua CRUD surface (admin).
type ExportJobUpdateInput struct {
	Status      string `json:"status,omitempty"`      // Trạng thái pipeline
	Progress    *int   `json:"progress,omitempty"`    // 0–100
	DownloadURL string `json:"downloadUrl,omitempty"` // URL file kết quả
	Error       string `json:"error,omitempty"`       // Thông tin lỗi
}

// ExportJobQueryInput tham số lọc danh sách job.
type ExportJobQueryInput struct {
	Status      string `query:"status" validate:"omitempty,oneof=pending processing completed failed cancelled"` // Lọc theo trạng thái
	RequestedBy string `query:"requestedBy"`                                                                     // Lọc theo người yêu cầu
	Page        string `query:"page"`                                                                            // Trang hiện tại
	Limit       string `query:"limit"`                                                                           // Số phần tử mỗi trang
}
