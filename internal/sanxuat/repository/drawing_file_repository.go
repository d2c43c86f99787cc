package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"gorm.io/gorm"
)

type DrawingFileRepository struct {
	db *gorm.DB
}

func NewDrawingFileRepository(db *gorm.DB) *DrawingFileRepository {
	return &DrawingFileRepository{db: db}
}

// ListByDrawing danh sách tệp của một bảng vẽ, phiên bản mới nhất trước
func (r *DrawingFileRepository) ListByDrawing(ctx context.Context, drawingID string) ([]entity.DrawingFile, error) {
	var files []entity.DrawingFile
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("bangve_id = ?", drawingID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

// FindByID tìm tệp theo ID
func (r *DrawingFileRepository) FindByID(ctx context.Context, id string) (*entity.DrawingFile, error) {
	var file entity.DrawingFile
	err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// Create tạo bản ghi tệp
func (r *DrawingFileRepository) Create(ctx context.Context, file *entity.DrawingFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// NextVersion số phiên bản kế tiếp cho một bảng vẽ
func (r *DrawingFileRepository) NextVersion(ctx context.Context, drawingID string) (string, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.DrawingFile{}).
		Where("bangve_id = ?", drawingID).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("v%d", count+1), nil
}
