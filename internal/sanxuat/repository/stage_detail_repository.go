package repository

import (
	"context"
	"errors"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"gorm.io/gorm"
)

type StageDetailRepository struct {
	db *gorm.DB
}

func NewStageDetailRepository(db *gorm.DB) *StageDetailRepository {
	return &StageDetailRepository{db: db}
}

// FindByID tìm bản ghi số liệu theo ID
func (r *StageDetailRepository) FindByID(ctx context.Context, id string) (*entity.StageDetail, error) {
	var detail entity.StageDetail
	err := r.db.WithContext(ctx).First(&detail, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &detail, nil
}

// ByDrawing lấy mọi bản ghi số liệu của một bảng vẽ
func (r *StageDetailRepository) ByDrawing(ctx context.Context, drawingID string) ([]entity.StageDetail, error) {
	var details []entity.StageDetail
	err := r.db.WithContext(ctx).
		Where("bangve_id = ?", drawingID).
		Order("submitted_at DESC").
		Find(&details).Error
	return details, err
}

// ByIDs lấy nhiều bản ghi một lượt
func (r *StageDetailRepository) ByIDs(ctx context.Context, ids []string) ([]entity.StageDetail, error) {
	var details []entity.StageDetail
	if len(ids) == 0 {
		return details, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&details).Error
	return details, err
}

// Create tạo bản ghi số liệu trong transaction tx
func (r *StageDetailRepository) Create(ctx context.Context, tx *gorm.DB, detail *entity.StageDetail) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(detail).Error
}

// UpdateApproval ghi kết quả duyệt KCS
func (r *StageDetailRepository) UpdateApproval(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&entity.StageDetail{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
