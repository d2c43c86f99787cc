package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/config"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services tập hợp service
type Services struct {
	Auth       *AuthService
	Drawing    *DrawingService
	Assignment *AssignmentService
	Queue      *QueueService
	Approval   *ApprovalService
	Report     *ReportService
	File       *FileService
	Hub        *sse.Hub
}

// NewServices tạo tập hợp service
func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	hub := sse.NewHub()

	// MinIO tùy chọn: thiếu cấu hình thì tính năng tệp bị tắt
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio init failed, file storage disabled", zap.Error(err))
			minioClient = nil
		}
	}

	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg),
		Drawing:    NewDrawingService(repos),
		Assignment: NewAssignmentService(db, repos, hub, logger),
		Queue:      NewQueueService(repos.User, repos.Assignment, repos.Drawing, logger),
		Approval:   NewApprovalService(db, repos, hub, logger),
		Report:     NewReportService(repos),
		File:       NewFileService(repos, minioClient, cfg.MinIO.Bucket),
		Hub:        hub,
	}
}
