package main

import (
	"context"

	"ambassador_hub/config"
	exportmodels "ambassador_hub/internal/api/export/models"
	notifmodels "ambassador_hub/internal/api/notification/models"
	reportmodels "ambassador_hub/internal/api/report/models"
	"ambassador_hub/internal/database"
	"ambassador_hub/internal/global"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.MonthlyReports = "monthly_reports"
	global.MongoDB_ColNames.CumulativeReports = "cumulative_reports"
	global.MongoDB_ColNames.DirtyRegions = "dirty_regions"
	global.MongoDB_ColNames.ExportJobs = "export_jobs"
	global.MongoDB_ColNames.Notifications = "notifications"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (global.InitValidator đăng ký custom validators: no_xss, exists, period_key, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections")

	// Khởi tạo các index cho các collection theo model tags
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.MonthlyReports), reportmodels.MonthlyReport{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.CumulativeReports), reportmodels.CumulativeReport{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.DirtyRegions), reportmodels.DirtyRegion{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ExportJobs), exportmodels.ExportJob{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Notifications), notifmodels.Notification{})

	// Index bổ sung không biểu diễn được qua tags (partial index)
	if err := database.CreateReportAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Warnf("Failed to create additional indexes: %v", err)
	}

	logrus.Info("Created indexes")
}
