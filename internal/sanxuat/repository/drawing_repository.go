package repository

import (
	"context"
	"errors"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DrawingRepository struct {
	db *gorm.DB
}

func NewDrawingRepository(db *gorm.DB) *DrawingRepository {
	return &DrawingRepository{db: db}
}

// FindByID tìm bảng vẽ theo ID
func (r *DrawingRepository) FindByID(ctx context.Context, id string) (*entity.Drawing, error) {
	var drawing entity.Drawing
	err := r.db.WithContext(ctx).First(&drawing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &drawing, nil
}

// FindByIDForUpdate khóa dòng bảng vẽ trong transaction hiện tại
func (r *DrawingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*entity.Drawing, error) {
	var drawing entity.Drawing
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&drawing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &drawing, nil
}

// ListByIDs lấy nhiều bảng vẽ một lượt (tránh N+1)
func (r *DrawingRepository) ListByIDs(ctx context.Context, ids []string) ([]entity.Drawing, error) {
	var drawings []entity.Drawing
	if len(ids) == 0 {
		return drawings, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&drawings).Error
	return drawings, err
}

// List danh sách bảng vẽ, lọc theo trạng thái nếu status >= 0
func (r *DrawingRepository) List(ctx context.Context, status int, page, pageSize int) ([]entity.Drawing, int64, error) {
	var drawings []entity.Drawing
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Drawing{})
	if status >= 0 {
		query = query.Where("trang_thai = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	err := query.Order("ky_hieu ASC").Find(&drawings).Error
	return drawings, total, err
}

// Create tạo bảng vẽ
func (r *DrawingRepository) Create(ctx context.Context, drawing *entity.Drawing) error {
	return r.db.WithContext(ctx).Create(drawing).Error
}

// UpdateStatus cập nhật trang_thai trong transaction tx (tx nil thì dùng kết nối chung)
func (r *DrawingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&entity.Drawing{}).
		Where("id = ?", id).
		Update("trang_thai", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
