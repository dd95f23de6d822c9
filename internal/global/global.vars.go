package global

import (
	"ambassador_hub/config"
	"ambassador_hub/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	MonthlyReports    string // Tên collection cho báo cáo tháng của ambassador
	CumulativeReports string // Tên collection cho báo cáo tổng hợp theo vùng
	DirtyRegions      string // Tên collection đánh dấu vùng/kỳ cần tổng hợp lại
	ExportJobs        string // Tên collection cho job xuất dữ liệu
	Notifications     string // Tên collection cho thông báo in-app
}

// Các biến toàn cục
var Validate *validator.Validate                       // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                      // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration         // Cấu hình của server
var MongoDB_ColNames = *new(MongoDB_CollectionName)    // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
