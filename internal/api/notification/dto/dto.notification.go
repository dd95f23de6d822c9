// Package dto định nghĩa các cấu trúc vào/ra cho domain Notification.
package dto

// NotificationCreateInput dữ liệu tạo thông báo thủ công (admin).
type NotificationCreateInput struct {
	Recipient       string `json:"recipient" validate:"required"` // Actor ID hoặc role
	Type            string `json:"type" validate:"required"`      // Loại thông báo
	Title           string `json:"title" validate:"required,no_xss"`
	Message         string `json:"message" validate:"omitempty,no_xss"`
	RelatedReportID string `json:"relatedReportId,omitempty"` // ObjectID hex (optional)
}

// NotificationUpdateInput dữ liệu cập nhật thông báo qua CRUD surface.
type NotificationUpdateInput struct {
	Title   string `json:"title,omitempty" validate:"omitempty,no_xss"`
	Message string `json:"message,omitempty" validate:"omitempty,no_xss"`
}

// FeedQueryInput tham số đọc feed thông báo của actor hiện tại.
type FeedQueryInput struct {
	UnreadOnly bool   `query:"unreadOnly"` // Chỉ lấy thông báo chưa đọc
	Page       string `query:"page"`       // Trang hiện tại
	Limit      string `query:"limit"`      // Số phần tử mỗi trang
}
