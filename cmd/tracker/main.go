package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/config"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/middleware"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/handler"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/service"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Nạp file .env
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// Nạp cấu hình
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Khởi tạo logger
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting quanlysanxuat service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// Khởi tạo database
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Drawing{},
		&entity.Assignment{},
		&entity.StageDetail{},
		&entity.DrawingFile{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// Dữ liệu cũ: phan_cong có thể chưa có cột stage_detail_id / active
	db.Exec("ALTER TABLE phan_cong ADD COLUMN IF NOT EXISTS stage_detail_id VARCHAR(36)")
	db.Exec("ALTER TABLE phan_cong ADD COLUMN IF NOT EXISTS active BOOLEAN DEFAULT true")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_phan_cong_bangve_id ON phan_cong(bangve_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_phan_cong_user_id ON phan_cong(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_phan_cong_firebase_uid ON phan_cong(firebase_uid)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_stage_details_bangve_id ON stage_details(bangve_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_bangve_trang_thai ON bangve(trang_thai)")

	// Khởi tạo Redis
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis not reachable, refresh tokens unavailable", zap.Error(err))
	}

	// Khởi tạo các tầng
	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services, repos, cfg)

	// Thiết lập chế độ Gin
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Tạo router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Đăng ký route
	handlers.RegisterRoutes(router, cfg)

	// Tạo HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	// Chạy server
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Tắt server an toàn
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
