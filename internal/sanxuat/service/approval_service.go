package service

import (
	"context"
	"errors"
	"time"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApprovalService cửa KCS: duyệt hoặc từ chối số liệu từng khâu và chốt
// hoàn thành bảng vẽ khi mọi khâu liên quan đã được duyệt.
type ApprovalService struct {
	db             *gorm.DB
	drawingRepo    *repository.DrawingRepository
	assignmentRepo *repository.AssignmentRepository
	detailRepo     *repository.StageDetailRepository
	hub            *sse.Hub
	logger         *zap.Logger
}

// NewApprovalService tạo service duyệt KCS
func NewApprovalService(db *gorm.DB, repos *repository.Repositories, hub *sse.Hub, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{
		db:             db,
		drawingRepo:    repos.Drawing,
		assignmentRepo: repos.Assignment,
		detailRepo:     repos.StageDetail,
		hub:            hub,
		logger:         logger,
	}
}

// Review KCS ghi kết quả duyệt một bản nộp. approved/rejected là trạng thái
// cuối của bản nộp đó; bị từ chối thì thợ nộp bản mới, không sửa bản cũ.
func (s *ApprovalService) Review(ctx context.Context, detailID string, approve bool, comment string, reviewer *entity.User) error {
	if !reviewer.IsInspector() {
		return newValidationError("user %d is not a KCS inspector", reviewer.ID)
	}

	detail, err := s.detailRepo.FindByID(ctx, detailID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newValidationError("stage detail %s not found", detailID)
		}
		return wrapStorage("load stage detail", err)
	}
	if detail.ApprovalStatus != entity.ApprovalStatusPending {
		return newConflictError("stage detail %s already reviewed (%s)", detailID, detail.ApprovalStatus)
	}

	verdict := entity.ApprovalStatusRejected
	if approve {
		verdict = entity.ApprovalStatusApproved
	}
	now := time.Now()
	updates := map[string]interface{}{
		"approval_status": verdict,
		"reviewed_by":     reviewer.ID,
		"reviewed_at":     now,
		"review_comment":  comment,
	}
	if err := s.detailRepo.UpdateApproval(ctx, nil, detailID, updates); err != nil {
		return wrapStorage("update stage detail", err)
	}

	s.logger.Info("stage reviewed",
		zap.String("detail_id", detailID),
		zap.String("bangve_id", detail.DrawingID),
		zap.String("stage", detail.Stage),
		zap.String("verdict", verdict),
		zap.Uint("reviewer", reviewer.ID),
	)
	s.hub.Broadcast(sse.EventStageReviewed, detail.DrawingID)
	return nil
}

// CanFinalize đúng khi mọi phân công đang hoạt động của bảng vẽ đều có bản
// nộp với approval_status = approved
func (s *ApprovalService) CanFinalize(ctx context.Context, drawingID string) (bool, error) {
	return s.canFinalize(ctx, s.db, drawingID)
}

func (s *ApprovalService) canFinalize(ctx context.Context, tx *gorm.DB, drawingID string) (bool, error) {
	var assignments []entity.Assignment
	if err := tx.WithContext(ctx).
		Where("bangve_id = ? AND active = ?", drawingID, true).
		Find(&assignments).Error; err != nil {
		return false, wrapStorage("load assignments", err)
	}
	if len(assignments) == 0 {
		return false, nil
	}

	detailIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if a.StageDetailID == nil || *a.StageDetailID == "" {
			return false, nil
		}
		detailIDs = append(detailIDs, *a.StageDetailID)
	}

	var details []entity.StageDetail
	if err := tx.WithContext(ctx).Where("id IN ?", detailIDs).Find(&details).Error; err != nil {
		return false, wrapStorage("load stage details", err)
	}
	if len(details) != len(detailIDs) {
		return false, nil
	}
	for _, d := range details {
		if d.ApprovalStatus != entity.ApprovalStatusApproved {
			return false, nil
		}
	}
	return true, nil
}

// Finalize chốt bảng vẽ hoàn thành. Điều kiện được kiểm tra lại bên trong
// transaction với dòng bảng vẽ đã khóa; kết quả CanFinalize cache từ trước
// không được tin.
func (s *ApprovalService) Finalize(ctx context.Context, drawingID string, finalizedBy *entity.User) error {
	if !finalizedBy.IsInspector() && !finalizedBy.IsManager() {
		return newValidationError("user %d may not finalize drawings", finalizedBy.ID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		drawing, err := s.drawingRepo.FindByIDForUpdate(ctx, tx, drawingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newValidationError("drawing %s not found", drawingID)
			}
			return wrapStorage("load drawing", err)
		}
		if drawing.OverallStatus == entity.DrawingStatusCompleted {
			return newConflictError("drawing %s is already completed", drawingID)
		}

		ok, err := s.canFinalize(ctx, tx, drawingID)
		if err != nil {
			return err
		}
		if !ok {
			return newPreconditionError("drawing %s has unapproved stages", drawingID)
		}

		if err := s.drawingRepo.UpdateStatus(ctx, tx, drawingID, entity.DrawingStatusCompleted); err != nil {
			return wrapStorage("update drawing status", err)
		}
		return tx.WithContext(ctx).Model(&entity.Drawing{}).
			Where("id = ?", drawingID).
			Update("approval_status", entity.ApprovalStatusApproved).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info("drawing finalized",
		zap.String("bangve_id", drawingID),
		zap.Uint("by", finalizedBy.ID),
	)
	s.hub.Broadcast(sse.EventDrawingFinalized, drawingID)
	return nil
}

// PendingReviews danh sách bản nộp đang chờ KCS
func (s *ApprovalService) PendingReviews(ctx context.Context) ([]entity.StageDetail, error) {
	var details []entity.StageDetail
	err := s.db.WithContext(ctx).
		Preload("Submitter").
		Where("approval_status = ?", entity.ApprovalStatusPending).
		Order("submitted_at ASC").
		Find(&details).Error
	if err != nil {
		return nil, wrapStorage("load pending reviews", err)
	}
	return details, nil
}
