package global

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// periodKeyRegex khớp định dạng kỳ báo cáo "YYYY-MM" (tháng 01-12)
var periodKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("exists", validateExists)
	_ = Validate.RegisterValidation("period_key", validatePeriodKey)
	_ = Validate.RegisterValidation("report_status", validateReportStatus)
	_ = Validate.RegisterValidation("export_format", validateExportFormat)
}

// validateNoXSS kiểm tra XSS trong các field văn bản tự do (tóm tắt hoạt động, lý do từ chối)
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"document.write",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validatePeriodKey kiểm tra định dạng kỳ báo cáo "YYYY-MM"
func validatePeriodKey(fl validator.FieldLevel) bool {
	return periodKeyRegex.MatchString(fl.Field().String())
}

// validateReportStatus kiểm tra giá trị trạng thái báo cáo hợp lệ
func validateReportStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "draft", "submitted", "under_review", "approved", "rejected", "revision_requested":
		return true
	}
	return false
}

// validateExportFormat kiểm tra định dạng file xuất được hỗ trợ
func validateExportFormat(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "csv", "pdf", "docx", "xlsx":
		return true
	}
	return false
}

// validateExists kiểm tra ObjectID tồn tại trong collection (foreign key validation)
// Format: validate:"exists=<collection_name>"
// Ví dụ: validate:"exists=monthly_reports"
func validateExists(fl validator.FieldLevel) bool {
	value := fl.Field()

	collectionName := fl.Param()
	if collectionName == "" {
		return false
	}

	// Convert value sang ObjectID
	var objID primitive.ObjectID
	switch v := value.Interface().(type) {
	case string:
		if v == "" {
			return true // Empty string = optional, skip validation (nếu có omitempty)
		}
		var err error
		objID, err = primitive.ObjectIDFromHex(v)
		if err != nil {
			return false
		}
	case primitive.ObjectID:
		if v == primitive.NilObjectID {
			return true // Nil ObjectID = optional, skip validation
		}
		objID = v
	case *primitive.ObjectID:
		if v == nil {
			return true
		}
		objID = *v
	default:
		// Không phải ObjectID → không validate
		return false
	}

	collection, exist := RegistryCollections.Get(collectionName)
	if !exist {
		// Collection không tồn tại trong registry → không thể validate
		return false
	}

	ctx := context.Background()
	count, err := collection.CountDocuments(ctx, bson.M{"_id": objID})
	if err != nil {
		return false
	}

	return count > 0
}
