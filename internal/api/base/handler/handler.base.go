package basehdl

// Package basehdl cung cấp BaseHandler dùng chung cho tất cả các domain handler.
// BaseHandler xử lý các công việc lặp đi lặp lại: parse request, validate input,
// chuẩn hóa filter từ query string và chuyển đổi DTO sang Model.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	basesvc "ambassador_hub/internal/api/base/service"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/global"
	"ambassador_hub/internal/utility"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// FilterOptions cấu hình việc kiểm tra filter từ client.
type FilterOptions struct {
	DeniedFields     []string // Các trường bị cấm xuất hiện trong filter
	AllowedOperators []string // Các MongoDB operator được phép sử dụng
	MaxFields        int      // Số lượng trường tối đa trong một filter
}

// BaseHandler cung cấp các hàm xử lý request/response cơ bản cho domain handler.
// T là kiểu Model, CreateInput/UpdateInput là các DTO tương ứng.
type BaseHandler[T any, CreateInput any, UpdateInput any] struct {
	BaseService   basesvc.BaseServiceMongo[T]
	filterOptions FilterOptions
}

// NewBaseHandler khởi tạo BaseHandler với cấu hình filter mặc định.
func NewBaseHandler[T any, CreateInput any, UpdateInput any](service basesvc.BaseServiceMongo[T]) *BaseHandler[T, CreateInput, UpdateInput] {
	return &BaseHandler[T, CreateInput, UpdateInput]{
		BaseService: service,
		filterOptions: FilterOptions{
			DeniedFields: []string{
				"password",
				"token",
				"secret",
				"key",
				"hash",
			},
			AllowedOperators: []string{
				"$eq", "$gt", "$gte", "$lt", "$lte", "$in", "$nin", "$exists",
			},
			MaxFields: 10,
		},
	}
}

// SetFilterOptions ghi đè cấu hình filter cho một domain handler cụ thể.
func (h *BaseHandler[T, CreateInput, UpdateInput]) SetFilterOptions(opts FilterOptions) {
	h.filterOptions = opts
}

// GetActorID lấy định danh actor từ context (do ActorContextMiddleware set).
func (h *BaseHandler[T, CreateInput, UpdateInput]) GetActorID(c fiber.Ctx) string {
	actorID, _ := c.Locals("actorID").(string)
	return actorID
}

// ValidateInput kiểm tra dữ liệu đầu vào theo struct tag `validate`.
// Trả về lỗi VAL_001 kèm danh sách field không hợp lệ.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateInput(input interface{}) error {
	if global.Validate == nil {
		return nil
	}
	if err := global.Validate.Struct(input); err != nil {
		var details []string
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				details = append(details, fmt.Sprintf("trường '%s' không thỏa điều kiện '%s'", fieldErr.Field(), fieldErr.Tag()))
			}
		}
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Dữ liệu đầu vào không hợp lệ: %s", strings.Join(details, "; ")),
			common.StatusBadRequest,
			details,
		)
	}
	return nil
}

// ParseRequestBody parse JSON body vào struct đích.
// Sử dụng json.Decoder với UseNumber để tránh mất precision với số lớn.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return common.NewError(
			common.ErrCodeValidationInput,
			"Request body không được để trống",
			common.StatusBadRequest,
			nil,
		)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return nil
}

// ParseRequestQuery parse query string vào struct đích.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestQuery(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().Query(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Query string không hợp lệ. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return nil
}

// ParseRequestParams parse URI params vào struct đích.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestParams(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().URI(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("URI params không hợp lệ. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return nil
}

// ProcessFilter đọc tham số `filter` (JSON) từ query string, chuẩn hóa và kiểm tra.
// Trả về map rỗng nếu client không truyền filter.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessFilter(c fiber.Ctx) (map[string]interface{}, error) {
	filterStr := c.Query("filter", "")
	if filterStr == "" {
		return map[string]interface{}{}, nil
	}

	var filter map[string]interface{}
	decoder := json.NewDecoder(strings.NewReader(filterStr))
	decoder.UseNumber()
	if err := decoder.Decode(&filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter không đúng định dạng JSON. Chi tiết: %v. Giá trị filter nhận được: %s", err, filterStr),
			common.StatusBadRequest,
			err,
		)
	}

	filter = h.normalizeFilter(filter)

	if err := h.validateFilter(filter); err != nil {
		return nil, err
	}

	return filter, nil
}

// normalizeFilter chuẩn hóa các giá trị trong filter trước khi đưa vào MongoDB:
// extended JSON {"$oid": "..."} và các chuỗi hex 24 ký tự ở trường _id/xxxId
// được chuyển thành ObjectID.
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilter(filter map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(filter))
	for key, value := range filter {
		normalized[key] = h.normalizeFilterValue(key, value)
	}
	return normalized
}

// normalizeFilterValue xử lý đệ quy một giá trị filter.
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilterValue(field string, value interface{}) interface{} {
	// Trường dạng ID: _id hoặc kết thúc bằng "Id"
	isIDField := field == "_id" || strings.HasSuffix(field, "Id")

	switch v := value.(type) {
	case map[string]interface{}:
		// Extended JSON: {"$oid": "hex"}
		if oidStr, ok := v["$oid"].(string); ok && len(v) == 1 {
			if oid, err := primitive.ObjectIDFromHex(oidStr); err == nil {
				return oid
			}
			return value
		}
		// Operator map: {"$in": [...], "$gte": ...}
		result := make(map[string]interface{}, len(v))
		for op, opValue := range v {
			if op == "$in" || op == "$nin" {
				if arr, ok := opValue.([]interface{}); ok {
					converted := make([]interface{}, len(arr))
					for i, item := range arr {
						converted[i] = h.normalizeFilterValue(field, item)
					}
					result[op] = converted
					continue
				}
			}
			result[op] = h.normalizeFilterValue(field, opValue)
		}
		return result
	case string:
		if isIDField && primitive.IsValidObjectID(v) {
			if oid, err := primitive.ObjectIDFromHex(v); err == nil {
				return oid
			}
		}
		return v
	default:
		return value
	}
}

// validateFilter kiểm tra filter theo cấu hình FilterOptions:
// cấm các trường nhạy cảm, chỉ cho phép operator trong whitelist và
// giới hạn số lượng trường.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateFilter(filter map[string]interface{}) error {
	if len(filter) > h.filterOptions.MaxFields {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter chỉ được phép tối đa %d trường, hiện tại có %d trường", h.filterOptions.MaxFields, len(filter)),
			common.StatusBadRequest,
			nil,
		)
	}

	for field, value := range filter {
		if utility.Contains(h.filterOptions.DeniedFields, field) {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Trường '%s' không được phép sử dụng trong filter vì lý do bảo mật", field),
				common.StatusBadRequest,
				nil,
			)
		}

		// Kiểm tra operator nếu giá trị là map
		if opMap, ok := value.(map[string]interface{}); ok {
			for op := range opMap {
				if !strings.HasPrefix(op, "$") {
					continue
				}
				if !utility.Contains(h.filterOptions.AllowedOperators, op) {
					return common.NewError(
						common.ErrCodeValidationFormat,
						fmt.Sprintf("Operator '%s' không được hỗ trợ. Các operator được phép: %s", op, strings.Join(h.filterOptions.AllowedOperators, ", ")),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}
	}

	return nil
}

// ProcessMongoOptions đọc tham số `options` (JSON) từ query string và chuyển thành
// MongoDB options (projection, sort, limit, skip). Trả về *mongoopts.FindOneOptions
// khi isFindOne=true, ngược lại trả về *mongoopts.FindOptions.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessMongoOptions(c fiber.Ctx, isFindOne bool) (interface{}, error) {
	optionsStr := c.Query("options", "")
	if optionsStr == "" {
		if isFindOne {
			return mongoopts.FindOne(), nil
		}
		return mongoopts.Find(), nil
	}

	var rawOptions map[string]interface{}
	if err := json.Unmarshal([]byte(optionsStr), &rawOptions); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Options không đúng định dạng JSON. Chi tiết: %v. Giá trị options nhận được: %s", err, optionsStr),
			common.StatusBadRequest,
			err,
		)
	}

	if err := h.validateMongoOptions(rawOptions); err != nil {
		return nil, err
	}

	// Parse sort từ JSON string gốc để giữ nguyên thứ tự các trường.
	parseSortWithOrder := func(optionsJSON string) bson.D {
		sortBson := bson.D{}

		var tempOptions map[string]json.RawMessage
		if err := json.Unmarshal([]byte(optionsJSON), &tempOptions); err != nil {
			return sortBson
		}
		sortRaw, ok := tempOptions["sort"]
		if !ok {
			return sortBson
		}

		decoder := json.NewDecoder(bytes.NewReader(sortRaw))
		decoder.UseNumber()
		token, err := decoder.Token()
		if err != nil || token != json.Delim('{') {
			return sortBson
		}
		for decoder.More() {
			keyToken, err := decoder.Token()
			if err != nil {
				break
			}
			field, ok := keyToken.(string)
			if !ok {
				continue
			}
			valueToken, err := decoder.Token()
			if err != nil {
				break
			}
			num, ok := valueToken.(json.Number)
			if !ok {
				continue
			}
			sortValue, err := num.Int64()
			if err != nil || (sortValue != 1 && sortValue != -1) {
				continue
			}
			sortBson = append(sortBson, bson.E{Key: field, Value: int(sortValue)})
		}
		return sortBson
	}

	if isFindOne {
		opts := mongoopts.FindOne()
		if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
			opts.SetProjection(projection)
		}
		if _, ok := rawOptions["sort"].(map[string]interface{}); ok {
			opts.SetSort(parseSortWithOrder(optionsStr))
		}
		return opts, nil
	}

	opts := mongoopts.Find()
	if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
		opts.SetProjection(projection)
	}
	if _, ok := rawOptions["sort"].(map[string]interface{}); ok {
		opts.SetSort(parseSortWithOrder(optionsStr))
	}
	if limit, ok := rawOptions["limit"].(float64); ok {
		opts.SetLimit(int64(limit))
	}
	if skip, ok := rawOptions["skip"].(float64); ok {
		opts.SetSkip(int64(skip))
	}
	return opts, nil
}

// validateMongoOptions kiểm tra tính hợp lệ của các options từ client.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateMongoOptions(options map[string]interface{}) error {
	allowedOptions := map[string]bool{
		"projection": true,
		"sort":       true,
		"limit":      true,
		"skip":       true,
	}

	for key := range options {
		if !allowedOptions[key] {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Option '%s' không được hỗ trợ. Các options được phép: projection, sort, limit, skip", key),
				common.StatusBadRequest,
				nil,
			)
		}
	}

	if projection, ok := options["projection"].(map[string]interface{}); ok {
		for field := range projection {
			if utility.Contains(h.filterOptions.DeniedFields, field) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Trường '%s' không được phép sử dụng trong projection vì lý do bảo mật", field),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	if sort, ok := options["sort"].(map[string]interface{}); ok {
		for field, value := range sort {
			if utility.Contains(h.filterOptions.DeniedFields, field) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Trường '%s' không được phép sử dụng trong sort vì lý do bảo mật", field),
					common.StatusBadRequest,
					nil,
				)
			}
			if v, ok := value.(float64); !ok || (v != 1 && v != -1) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Giá trị sort cho trường '%s' phải là 1 (tăng dần) hoặc -1 (giảm dần), giá trị hiện tại: %v", field, value),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	if limit, ok := options["limit"].(float64); ok {
		if limit <= 0 {
			return common.NewError(common.ErrCodeValidationFormat, "Giá trị limit phải lớn hơn 0", common.StatusBadRequest, nil)
		}
		if limit > 1000 {
			return common.NewError(common.ErrCodeValidationFormat, "Giá trị limit không được vượt quá 1000 để đảm bảo hiệu năng hệ thống", common.StatusBadRequest, nil)
		}
	}

	if skip, ok := options["skip"].(float64); ok && skip < 0 {
		return common.NewError(common.ErrCodeValidationFormat, "Giá trị skip không được âm", common.StatusBadRequest, nil)
	}

	return nil
}

// ParsePagination đọc thông tin phân trang từ query string.
// Hỗ trợ page (mặc định 1) và limit (mặc định 10).
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParsePagination(c fiber.Ctx) (int64, int64) {
	page := utility.P2Int64(c.Query("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit := utility.P2Int64(c.Query("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	return page, limit
}

// GetIDFromContext lấy ID từ URI params của request.
func (h *BaseHandler[T, CreateInput, UpdateInput]) GetIDFromContext(c fiber.Ctx) string {
	return c.Params("id")
}

// TransformCreateInputToModel chuyển đổi CreateInput (DTO) sang Model.
// DTO và Model dùng chung json tag nên có thể đổ dữ liệu qua JSON.
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformCreateInputToModel(input *CreateInput) (*T, error) {
	model := new(T)
	if _, err := utility.ConvertStruct(input, model); err != nil {
		return nil, fmt.Errorf("lỗi chuyển đổi dữ liệu tạo mới sang model: %w", err)
	}
	return model, nil
}

// TransformUpdateInputToModel chuyển đổi UpdateInput (DTO) sang Model.
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformUpdateInputToModel(input *UpdateInput) (*T, error) {
	model := new(T)
	if _, err := utility.ConvertStruct(input, model); err != nil {
		return nil, fmt.Errorf("lỗi chuyển đổi dữ liệu cập nhật sang model: %w", err)
	}
	return model, nil
}

// BuildUpdateSet chuyển model sang UpdateData với operator $set,
// chỉ đưa vào các trường có giá trị khác zero (partial update).
func (h *BaseHandler[T, CreateInput, UpdateInput]) BuildUpdateSet(model *T) (*basesvc.UpdateData, error) {
	modelMap, err := utility.ToMap(model)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeInternalServer,
			fmt.Sprintf("Lỗi convert model sang map: %v", err),
			common.StatusInternalServerError,
			err,
		)
	}

	updateData := &basesvc.UpdateData{Set: make(map[string]interface{})}
	for k, v := range modelMap {
		if rv := reflect.ValueOf(v); rv.IsValid() && !rv.IsZero() {
			updateData.Set[k] = v
		}
	}
	return updateData, nil
}
