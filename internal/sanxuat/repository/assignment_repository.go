package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID tìm phân công theo ID
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*entity.Assignment, error) {
	var assignment entity.Assignment
	err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// ByWorker tra cứu phân công của một thợ theo cả hai khóa nhận dạng:
// user_id số và firebase_uid chuỗi. Bản ghi cũ có thể chỉ ghi một trong hai,
// nên phải OR cả hai rồi khử trùng lặp theo id phân công.
func (r *AssignmentRepository) ByWorker(ctx context.Context, workerID uint, firebaseUID string) ([]entity.Assignment, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)
	switch {
	case workerID > 0 && firebaseUID != "":
		query = query.Where("user_id = ? OR firebase_uid = ?", workerID, firebaseUID)
	case workerID > 0:
		query = query.Where("user_id = ?", workerID)
	case firebaseUID != "":
		query = query.Where("firebase_uid = ?", firebaseUID)
	default:
		return nil, nil
	}

	var assignments []entity.Assignment
	if err := query.Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	// Khử trùng lặp theo id (một bản ghi có thể khớp cả hai khóa)
	seen := make(map[string]bool, len(assignments))
	deduped := assignments[:0]
	for _, a := range assignments {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		deduped = append(deduped, a)
	}
	return deduped, nil
}

// ByDrawing lấy mọi phân công đang hoạt động của một bảng vẽ
func (r *AssignmentRepository) ByDrawing(ctx context.Context, drawingID string) ([]entity.Assignment, error) {
	var assignments []entity.Assignment
	err := r.db.WithContext(ctx).
		Where("bangve_id = ? AND active = ?", drawingID, true).
		Order("stage ASC").
		Find(&assignments).Error
	return assignments, err
}

// Create tạo một phân công
func (r *AssignmentRepository) Create(ctx context.Context, assignment *entity.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// CreateBatch tạo nhiều phân công trong transaction tx. Hỏng một là hỏng cả lô.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, tx *gorm.DB, assignments []entity.Assignment) error {
	if tx == nil {
		tx = r.db
	}
	if len(assignments) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&assignments).Error
}

// UpdateStageStatus cập nhật trạng thái khâu. Trạng thái chỉ tiến 0→1→2;
// stage_detail_id chỉ được gắn khi chuyển sang Done.
func (r *AssignmentRepository) UpdateStageStatus(ctx context.Context, tx *gorm.DB, id string, newStatus int, stageDetailID *string) error {
	if tx == nil {
		tx = r.db
	}
	var assignment entity.Assignment
	if err := tx.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if newStatus < assignment.StageStatus {
		return fmt.Errorf("stage status cannot regress from %d to %d", assignment.StageStatus, newStatus)
	}

	updates := map[string]interface{}{"trang_thai": newStatus}
	if stageDetailID != nil {
		updates["stage_detail_id"] = *stageDetailID
	}
	return tx.WithContext(ctx).
		Model(&entity.Assignment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Deactivate tắt cờ active (soft delete)
func (r *AssignmentRepository) Deactivate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Assignment{}).
		Where("id = ?", id).
		Update("active", false).Error
}
