// Package models chứa các model thuộc domain Export.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các trạng thái của ExportJob. completed, failed, cancelled là terminal.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"
)

// Các loại báo cáo có thể export.
const (
	TargetTypeMonthly    = "monthly"
	TargetTypeCumulative = "cumulative"
)

// Các định dạng export được hỗ trợ.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ExportJob một yêu cầu render báo cáo thành file (export_jobs).
// Job do Export Pipeline sở hữu độc quyền: caller chỉ poll trạng thái.
// Progress không bao giờ giảm khi đang processing; hủy là cooperative —
// processor kiểm tra trạng thái trước mỗi bước progress và trước completion,
// completion đến muộn của job đã hủy bị bỏ qua trong im lặng.
type ExportJob struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`                                                    // MongoDB _id
	TargetReportID   primitive.ObjectID `json:"targetReportId" bson:"targetReportId" index:"single:1"`                                // Báo cáo cần render
	TargetReportType string             `json:"targetReportType" bson:"targetReportType" validate:"required,oneof=monthly cumulative"` // monthly | cumulative
	Format           string             `json:"format" bson:"format" validate:"required,export_format"`                               // pdf | docx | xlsx | csv
	Status           string             `json:"status" bson:"status" default:"pending" index:"single:1,compound:job_status_created"`   // Trạng thái pipeline
	Progress         int                `json:"progress" bson:"progress"`                                                             // 0–100, không giảm khi processing
	DownloadURL      string             `json:"downloadUrl,omitempty" bson:"downloadUrl,omitempty"`                                   // Set khi completed
	Error            string             `json:"error,omitempty" bson:"error,omitempty"`                                               // Set khi failed
	RequestedBy      string             `json:"requestedBy" bson:"requestedBy" index:"single:1"`                                      // Actor yêu cầu — nhận thông báo export_ready
	CreatedAt        int64              `json:"createdAt" bson:"createdAt" index:"compound:job_status_created,order:1"`                // Unix milliseconds
	UpdatedAt        int64              `json:"updatedAt" bson:"updatedAt"`                                                           // Unix milliseconds
	CompletedAt      *int64             `json:"completedAt,omitempty" bson:"completedAt,omitempty"`                                   // Unix milliseconds — set ở mọi terminal state
}

// IsTerminal cho biết job đã kết thúc vòng đời chưa.
func (j *ExportJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}
