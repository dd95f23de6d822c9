package basemodels

// PaginateResult chứa kết quả truy vấn có phân trang.
type PaginateResult[T any] struct {
	Page      int64 `json:"page" bson:"page"`           // Trang hiện tại
	Limit     int64 `json:"limit" bson:"limit"`         // Số lượng item trên một trang
	ItemCount int64 `json:"itemCount" bson:"itemCount"` // Số lượng item trong trang hiện tại
	Items     []T   `json:"items" bson:"items"`         // Danh sách item
	Total     int64 `json:"total" bson:"total"`         // Tổng số item khớp filter
	TotalPage int64 `json:"totalPage" bson:"totalPage"` // Tổng số trang
}

// CountResult chứa kết quả đếm document.
type CountResult struct {
	TotalCount int64 `json:"totalCount" bson:"totalCount"`
}
