// Package models chứa các model thuộc domain Notification.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các loại thông báo in-app.
const (
	TypeReportSubmitted   = "report_submitted"   // Gửi cho reviewer khi có báo cáo chờ duyệt
	TypeReportUnderReview = "report_under_review" // Gửi cho tác giả khi báo cáo được nhận xem xét
	TypeReportApproved    = "report_approved"    // Gửi cho tác giả
	TypeReportRejected    = "report_rejected"    // Gửi cho tác giả
	TypeRevisionRequested = "revision_requested" // Gửi cho tác giả
	TypeExportReady       = "export_ready"       // Gửi cho người yêu cầu export
	TypeExportFailed      = "export_failed"      // Gửi cho người yêu cầu export
)

// Notification một thông báo in-app (notifications).
// Recipient là actor ID cụ thể hoặc tên role (reviewer/admin) khi thông báo
// hướng tới cả nhóm; feed của một actor gộp cả hai loại.
type Notification struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`                                          // MongoDB _id
	Recipient       string             `json:"recipient" bson:"recipient" index:"single:1,compound:recipient_read"`        // Actor ID hoặc role
	Type            string             `json:"type" bson:"type" index:"single:1"`                                          // Loại thông báo
	Title           string             `json:"title" bson:"title"`                                                         // Tiêu đề ngắn
	Message         string             `json:"message" bson:"message"`                                                     // Nội dung
	RelatedReportID primitive.ObjectID `json:"relatedReportId,omitempty" bson:"relatedReportId,omitempty" index:"single:1"` // Báo cáo liên quan (nếu có)
	IsRead          bool               `json:"isRead" bson:"isRead" index:"compound:recipient_read"`                       // Đã đọc chưa
	ReadAt          *int64             `json:"readAt,omitempty" bson:"readAt,omitempty"`                                   // Unix milliseconds
	CreatedAt       int64              `json:"createdAt" bson:"createdAt" index:"single:-1"`                               // Unix milliseconds
	UpdatedAt       int64              `json:"updatedAt" bson:"updatedAt"`                                                 // Unix milliseconds
}
