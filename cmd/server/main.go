package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"

	notifsvc "ambassador_hub/internal/api/notification/service"
	reportsvc "ambassador_hub/internal/api/report/service"
	exportsvc "ambassador_hub/internal/api/export/service"
	"ambassador_hub/internal/export"
	"ambassador_hub/internal/global"
	"ambassador_hub/internal/insight"
	"ambassador_hub/internal/logger"
	"ambassador_hub/internal/notification"
	"ambassador_hub/internal/notification/channels"
	"ambassador_hub/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// startWorkers khởi động các background worker: export processor,
// cumulative refresh và export cleanup. Mỗi worker chạy goroutine riêng
// với recover để không kéo sập server.
func startWorkers(ctx context.Context, narrator reportsvc.Narrator) {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	runWorker := func(name string, start func(context.Context)) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(map[string]interface{}{
						"worker": name,
						"panic":  r,
					}).Error("Worker goroutine panic")
				}
			}()
			start(ctx)
		}()
	}

	// Export processor: renderer cục bộ + poll job pending
	renderer, err := export.NewLocalFileRenderer(cfg.ExportOutputDir, "/exports")
	if err != nil {
		log.WithError(err).Error("Failed to create export renderer, export pipeline disabled")
	} else {
		jobs, err := exportsvc.NewExportJobService()
		if err != nil {
			log.WithError(err).Error("Failed to create export job service, export pipeline disabled")
		} else {
			monthly, err := reportsvc.NewMonthlyReportService()
			if err != nil {
				log.WithError(err).Error("Failed to create monthly report service for export pipeline")
			} else {
				cumulative, err := reportsvc.NewCumulativeReportService(narrator)
				if err != nil {
					log.WithError(err).Error("Failed to create cumulative report service for export pipeline")
				} else {
					processor := export.NewProcessor(jobs, monthly, cumulative, renderer,
						time.Duration(cfg.ExportPollInterval)*time.Second)
					runWorker("export_processor", processor.Start)
				}
			}
		}
	}

	// Worker tổng hợp lại các vùng dirty sau khi có báo cáo được duyệt
	refreshWorker, err := worker.NewCumulativeRefreshWorker(narrator,
		time.Duration(cfg.AggregationInterval)*time.Second, int64(cfg.AggregationBatchSize))
	if err != nil {
		log.WithError(err).Error("Failed to create cumulative refresh worker")
	} else {
		runWorker("cumulative_refresh", refreshWorker.Start)
	}

	// Worker dọn export job quá hạn
	cleanupWorker, err := worker.NewExportCleanupWorker(
		time.Duration(cfg.ExportCleanupEvery)*time.Second,
		time.Duration(cfg.ExportJobTTL)*time.Second)
	if err != nil {
		log.WithError(err).Error("Failed to create export cleanup worker")
	} else {
		runWorker("export_cleanup", cleanupWorker.Start)
	}
}

// initDispatcher gắn notification dispatcher vào lifecycle event bus.
func initDispatcher() {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	notifications, err := notifsvc.NewNotificationService()
	if err != nil {
		log.WithError(err).Error("Failed to create notification service, dispatcher disabled")
		return
	}

	email := channels.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	notification.NewDispatcher(notifications, email).Register()
	log.Info("Notification dispatcher registered")
}

// main_thread khởi tạo và chạy Fiber server
func main_thread(app *fiber.App) {
	cfg := global.MongoDB_ServerConfig
	address := cfg.Address
	log := logger.GetAppLogger()

	// Helper resolve đường dẫn tương đối từ gốc project (ngang với config/)
	resolvePath := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		currentDir, err := os.Getwd()
		if err != nil {
			return path
		}
		for {
			envDir := filepath.Join(currentDir, "config", "env")
			if _, err := os.Stat(envDir); err == nil {
				return filepath.Join(currentDir, path)
			}
			parentDir := filepath.Dir(currentDir)
			if parentDir == currentDir {
				return path
			}
			currentDir = parentDir
		}
	}

	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			log.Fatalf("TLS certificate file not found: %s (resolved from: %s)", certPath, cfg.TLSCertFile)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			log.Fatalf("TLS key file not found: %s (resolved from: %s)", keyPath, cfg.TLSKeyFile)
		}

		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}

		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}

		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		tlsListener := tls.NewListener(ln, tlsConfig)

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(tlsListener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
	} else {
		log.WithFields(map[string]interface{}{
			"address":  address,
			"protocol": "HTTP",
		}).Info("Starting server with HTTP")

		if err := app.Listen(address, fiber.ListenConfig{}); err != nil {
			log.Fatalf("Error in Fiber Listen: %v", err)
		}
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Narrator tất định dùng chung cho Aggregation Engine và worker
	narrator := insight.NewRulesNarrator()

	// Gắn dispatcher thông báo vào event bus
	initDispatcher()

	// Khởi động các background worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startWorkers(ctx, narrator)

	// Khởi tạo app với middleware và routes
	app, err := InitFiberApp(narrator)
	if err != nil {
		logger.GetAppLogger().Fatalf("Failed to initialize Fiber app: %v", err)
	}

	// Chạy Fiber server trên main thread
	main_thread(app)
}
