package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
)

// FileService lưu tệp bản vẽ (PDF, CAD) vào MinIO, quản lý phiên bản
type FileService struct {
	fileRepo    *repository.DrawingFileRepository
	drawingRepo *repository.DrawingRepository
	minioClient *minio.Client
	bucket      string
}

// NewFileService tạo service tệp. minioClient nil thì tính năng tệp bị tắt.
func NewFileService(repos *repository.Repositories, minioClient *minio.Client, bucket string) *FileService {
	return &FileService{
		fileRepo:    repos.DrawingFile,
		drawingRepo: repos.Drawing,
		minioClient: minioClient,
		bucket:      bucket,
	}
}

// Enabled cho biết MinIO đã cấu hình chưa
func (s *FileService) Enabled() bool {
	return s.minioClient != nil
}

// Upload đẩy một tệp lên MinIO và ghi bản ghi phiên bản
func (s *FileService) Upload(ctx context.Context, drawingID, fileName, contentType string, size int64, reader io.Reader, uploadedBy uint) (*entity.DrawingFile, error) {
	if !s.Enabled() {
		return nil, newPreconditionError("file storage is not configured")
	}
	if _, err := s.drawingRepo.FindByID(ctx, drawingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("drawing %s not found", drawingID)
		}
		return nil, wrapStorage("load drawing", err)
	}

	version, err := s.fileRepo.NextVersion(ctx, drawingID)
	if err != nil {
		return nil, wrapStorage("next file version", err)
	}

	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	objectKey := fmt.Sprintf("bangve/%s/%s/%s%s", drawingID, version, id[:8], path.Ext(fileName))

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.minioClient.PutObject(ctx, s.bucket, objectKey, reader, size, opts); err != nil {
		return nil, wrapStorage("upload object", err)
	}

	file := &entity.DrawingFile{
		ID:          id[:32],
		DrawingID:   drawingID,
		Version:     version,
		FileName:    fileName,
		ObjectKey:   objectKey,
		FileSize:    size,
		ContentType: contentType,
		UploadedBy:  uploadedBy,
		CreatedAt:   time.Now(),
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Bản ghi hỏng thì dọn object vừa đẩy
		_ = s.minioClient.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
		return nil, wrapStorage("create file record", err)
	}
	return file, nil
}

// List danh sách tệp của một bảng vẽ
func (s *FileService) List(ctx context.Context, drawingID string) ([]entity.DrawingFile, error) {
	files, err := s.fileRepo.ListByDrawing(ctx, drawingID)
	if err != nil {
		return nil, wrapStorage("list files", err)
	}
	return files, nil
}

// DownloadURL URL tải có thời hạn cho một tệp
func (s *FileService) DownloadURL(ctx context.Context, fileID string) (string, error) {
	if !s.Enabled() {
		return "", newPreconditionError("file storage is not configured")
	}
	file, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", newValidationError("file %s not found", fileID)
		}
		return "", wrapStorage("load file", err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	u, err := s.minioClient.PresignedGetObject(ctx, s.bucket, file.ObjectKey, 15*time.Minute, params)
	if err != nil {
		return "", wrapStorage("presign download", err)
	}
	return u.String(), nil
}
