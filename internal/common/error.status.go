package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusAccepted  = 202 // Yêu cầu được chấp nhận
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest         = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized       = 401 // Chưa xác thực
	StatusForbidden          = 403 // Không có quyền truy cập
	StatusNotFound           = 404 // Không tìm thấy tài nguyên
	StatusConflict           = 409 // Xung đột dữ liệu
	StatusGone               = 410 // Tài nguyên không còn tồn tại
	StatusPreconditionFailed = 412 // Điều kiện tiên quyết không thỏa mãn
	StatusUnprocessable      = 422 // Dữ liệu hợp lệ về cú pháp nhưng không xử lý được
	StatusTooManyRequests    = 429 // Quá nhiều yêu cầu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusNotImplemented      = 501 // Chức năng chưa được triển khai
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// Response Messages
const (
	// Success Messages
	MsgSuccess  = "Thao tác thành công"
	MsgCreated  = "Tạo mới thành công"
	MsgAccepted = "Yêu cầu được chấp nhận"

	// Error Messages
	MsgBadRequest      = "Yêu cầu không hợp lệ"
	MsgNotFound        = "Không tìm thấy tài nguyên"
	MsgConflict        = "Xung đột dữ liệu"
	MsgInternalError   = "Lỗi hệ thống"
	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: RPT_001)
	Category    string // Phân loại lỗi (ví dụ: Report)
	SubCategory string // Phân loại con (ví dụ: Transition)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidation = ErrorCode{
		Code:        "VAL",
		Category:    "Validation",
		SubCategory: "General",
		Description: "Lỗi xác thực dữ liệu chung",
	}

	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	// Report Lifecycle Errors (RPT_xxx)
	ErrCodeReportTransition = ErrorCode{
		Code:        "RPT_001",
		Category:    "Report",
		SubCategory: "Transition",
		Description: "Chuyển trạng thái báo cáo không hợp lệ",
	}

	ErrCodeReportPayload = ErrorCode{
		Code:        "RPT_002",
		Category:    "Report",
		SubCategory: "Payload",
		Description: "Nội dung báo cáo chưa đầy đủ",
	}

	ErrCodeReportConcurrency = ErrorCode{
		Code:        "RPT_003",
		Category:    "Report",
		SubCategory: "Concurrency",
		Description: "Xung đột khi nhiều reviewer thao tác đồng thời",
	}

	// Aggregation Errors (AGG_xxx)
	ErrCodeAggregation = ErrorCode{
		Code:        "AGG_001",
		Category:    "Aggregation",
		SubCategory: "Source",
		Description: "Lỗi dữ liệu nguồn khi tổng hợp",
	}

	ErrCodeAggregationSend = ErrorCode{
		Code:        "AGG_002",
		Category:    "Aggregation",
		SubCategory: "Send",
		Description: "Lỗi gửi báo cáo tổng hợp",
	}

	// Export Errors (EXP_xxx)
	ErrCodeExportJob = ErrorCode{
		Code:        "EXP_001",
		Category:    "Export",
		SubCategory: "Job",
		Description: "Lỗi về job xuất dữ liệu",
	}

	ErrCodeExportRender = ErrorCode{
		Code:        "EXP_002",
		Category:    "Export",
		SubCategory: "Render",
		Description: "Lỗi render file xuất dữ liệu",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	// So sánh theo mã lỗi + message giữa hai *Error
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
	}

	// Hỗ trợ wrapped errors - so sánh qua error message
	if target.Error() == e.Message {
		return true
	}

	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// WithDetails tạo bản sao của một error định nghĩa sẵn kèm thông tin chi tiết
func WithDetails(err error, details any) error {
	if e, ok := err.(*Error); ok {
		return &Error{
			Code:       e.Code,
			Message:    e.Message,
			StatusCode: e.StatusCode,
			Details:    details,
		}
	}
	return err
}

// Custom errors
var (
	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound   = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)

	// Report Lifecycle Errors
	ErrInvalidTransition = NewError(ErrCodeReportTransition, "Trạng thái hiện tại không cho phép thao tác này", StatusConflict, nil)
	ErrIncompletePayload = NewError(ErrCodeReportPayload, "Báo cáo thiếu chỉ số hoặc tóm tắt hoạt động", StatusUnprocessable, nil)
	ErrAlreadyClaimed    = NewError(ErrCodeReportConcurrency, "Báo cáo đã được reviewer khác nhận xử lý", StatusConflict, nil)
	ErrStaleVersion      = NewError(ErrCodeReportConcurrency, "Phiên bản báo cáo đã thay đổi, vui lòng tải lại", StatusPreconditionFailed, nil)

	// Aggregation Errors
	ErrNoApprovedReports = NewError(ErrCodeAggregation, "Không có báo cáo đã duyệt trong kỳ để tổng hợp", StatusUnprocessable, nil)
	ErrAlreadySent       = NewError(ErrCodeAggregationSend, "Báo cáo tổng hợp đã được gửi trước đó", StatusConflict, nil)

	// Export Errors
	ErrJobNotFound   = NewError(ErrCodeExportJob, "Không tìm thấy job xuất dữ liệu", StatusNotFound, nil)
	ErrRenderFailure = NewError(ErrCodeExportRender, "Render file xuất dữ liệu thất bại", StatusInternalServerError, nil)
	ErrCancelled     = NewError(ErrCodeExportJob, "Job xuất dữ liệu đã bị hủy", StatusConflict, nil)
)

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Không convert ErrNotFound - giữ nguyên để tầng trên phân loại nghiệp vụ
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err.Error() == ErrNotFound.Error() {
		return ErrNotFound
	}

	var mongoErr mongo.CommandError
	if errors.As(err, &mongoErr) {
		switch {
		case mongoErr.Code >= 100 && mongoErr.Code < 200:
			return NewError(ErrCodeDatabaseConnection, "Lỗi kết nối MongoDB", StatusServiceUnavailable, nil)
		case mongoErr.Code >= 300 && mongoErr.Code < 500:
			return NewError(ErrCodeDatabaseQuery, "Lỗi truy vấn MongoDB", StatusInternalServerError, nil)
		case mongoErr.Code >= 500:
			return NewError(ErrCodeDatabase, "Lỗi hệ thống MongoDB", StatusInternalServerError, nil)
		}
	}

	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if mongo.IsNetworkError(err) {
		return ErrConnection
	}
	if mongo.IsTimeout(err) {
		return NewError(ErrCodeDatabaseConnection, "Kết nối MongoDB bị timeout", StatusServiceUnavailable, nil)
	}

	// Không nhận diện được lỗi cụ thể, trả về lỗi hệ thống chung
	return NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}
