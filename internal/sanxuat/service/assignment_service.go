package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentService điều phối phân công: gán hai thợ (hạ + cao) cho một
// bảng vẽ và chuyển bảng vẽ sang "đang sản xuất" trong cùng một transaction.
type AssignmentService struct {
	db             *gorm.DB
	drawingRepo    *repository.DrawingRepository
	assignmentRepo *repository.AssignmentRepository
	detailRepo     *repository.StageDetailRepository
	userRepo       *repository.UserRepository
	hub            *sse.Hub
	logger         *zap.Logger
}

// NewAssignmentService tạo service phân công
func NewAssignmentService(db *gorm.DB, repos *repository.Repositories, hub *sse.Hub, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		db:             db,
		drawingRepo:    repos.Drawing,
		assignmentRepo: repos.Assignment,
		detailRepo:     repos.StageDetail,
		userRepo:       repos.User,
		hub:            hub,
		logger:         logger,
	}
}

// AssignResult id hai phân công vừa tạo
type AssignResult struct {
	LowAssignmentID  string `json:"low_assignment_id"`
	HighAssignmentID string `json:"high_assignment_id"`
}

// sameWorker so hai người theo mọi trường định danh có giá trị, vì không
// trường nào chắc chắn được điền đủ trên cả hai bản ghi
func sameWorker(a, b *entity.User) bool {
	if a.ID != 0 && b.ID != 0 && a.ID == b.ID {
		return true
	}
	if a.FirebaseUID != "" && b.FirebaseUID != "" && a.FirebaseUID == b.FirebaseUID {
		return true
	}
	if a.Email != "" && b.Email != "" && strings.EqualFold(a.Email, b.Email) {
		return true
	}
	if a.Name != "" && b.Name != "" && strings.EqualFold(a.Name, b.Name) {
		return true
	}
	return false
}

// Assign gán thợ quấn hạ và thợ quấn cao cho một bảng vẽ. Nguyên tử: đổi
// trạng thái bảng vẽ và tạo đúng hai phân công cùng thành công hoặc cùng
// rollback, không bao giờ để bảng vẽ "đang sản xuất" mà thiếu phân công.
func (s *AssignmentService) Assign(ctx context.Context, drawingID string, lowWorkerID, highWorkerID uint, assignedBy uint) (*AssignResult, error) {
	lowWorker, err := s.userRepo.FindByID(ctx, lowWorkerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("low winding worker %d not found", lowWorkerID)
		}
		return nil, wrapStorage("load low worker", err)
	}
	highWorker, err := s.userRepo.FindByID(ctx, highWorkerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("high winding worker %d not found", highWorkerID)
		}
		return nil, wrapStorage("load high worker", err)
	}
	if sameWorker(lowWorker, highWorker) {
		return nil, newValidationError("same worker selected for both stages")
	}

	now := time.Now()
	result := &AssignResult{
		LowAssignmentID:  uuid.New().String(),
		HighAssignmentID: uuid.New().String(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		drawing, err := s.drawingRepo.FindByIDForUpdate(ctx, tx, drawingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newValidationError("drawing %s not found", drawingID)
			}
			return wrapStorage("load drawing", err)
		}
		if drawing.OverallStatus != entity.DrawingStatusNew {
			return newConflictError("drawing %s is already in progress", drawingID)
		}

		var existing int64
		if err := tx.Model(&entity.Assignment{}).
			Where("bangve_id = ? AND active = ?", drawingID, true).
			Count(&existing).Error; err != nil {
			return wrapStorage("check existing assignments", err)
		}
		if existing > 0 {
			return newConflictError("drawing %s already has active assignments", drawingID)
		}

		if err := s.drawingRepo.UpdateStatus(ctx, tx, drawingID, entity.DrawingStatusInProgress); err != nil {
			return wrapStorage("update drawing status", err)
		}

		assignments := []entity.Assignment{
			{
				ID:          result.LowAssignmentID,
				DrawingID:   drawingID,
				WorkerID:    lowWorker.ID,
				FirebaseUID: lowWorker.FirebaseUID,
				Stage:       entity.StageLow,
				StageStatus: entity.StageStatusNotStarted,
				AssignedBy:  assignedBy,
				AssignedAt:  now,
				Active:      true,
			},
			{
				ID:          result.HighAssignmentID,
				DrawingID:   drawingID,
				WorkerID:    highWorker.ID,
				FirebaseUID: highWorker.FirebaseUID,
				Stage:       entity.StageHigh,
				StageStatus: entity.StageStatusNotStarted,
				AssignedBy:  assignedBy,
				AssignedAt:  now,
				Active:      true,
			},
		}
		if err := s.assignmentRepo.CreateBatch(ctx, tx, assignments); err != nil {
			return wrapStorage("create assignments", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("drawing assigned",
		zap.String("bangve_id", drawingID),
		zap.Uint("low_worker", lowWorker.ID),
		zap.Uint("high_worker", highWorker.ID),
	)
	s.hub.NotifyUser(lowWorker.ID, sse.EventAssignmentCreated, drawingID)
	s.hub.NotifyUser(highWorker.ID, sse.EventAssignmentCreated, drawingID)
	return result, nil
}

// AssignPress gán thợ ép cho một bảng vẽ đã vào sản xuất. Khâu ép chạy song
// song với hai khâu quấn nên không đổi trạng thái bảng vẽ.
func (s *AssignmentService) AssignPress(ctx context.Context, drawingID string, pressWorkerID uint, assignedBy uint) (string, error) {
	worker, err := s.userRepo.FindByID(ctx, pressWorkerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", newValidationError("press worker %d not found", pressWorkerID)
		}
		return "", wrapStorage("load press worker", err)
	}

	assignmentID := uuid.New().String()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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

		var existing int64
		if err := tx.Model(&entity.Assignment{}).
			Where("bangve_id = ? AND stage = ? AND active = ?", drawingID, entity.StagePress, true).
			Count(&existing).Error; err != nil {
			return wrapStorage("check press assignment", err)
		}
		if existing > 0 {
			return newConflictError("drawing %s already has a press assignment", drawingID)
		}

		assignment := entity.Assignment{
			ID:          assignmentID,
			DrawingID:   drawingID,
			WorkerID:    worker.ID,
			FirebaseUID: worker.FirebaseUID,
			Stage:       entity.StagePress,
			StageStatus: entity.StageStatusNotStarted,
			AssignedBy:  assignedBy,
			AssignedAt:  time.Now(),
			Active:      true,
		}
		if err := s.assignmentRepo.CreateBatch(ctx, tx, []entity.Assignment{assignment}); err != nil {
			return wrapStorage("create press assignment", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.hub.NotifyUser(worker.ID, sse.EventAssignmentCreated, drawingID)
	return assignmentID, nil
}

// StartStage thợ bắt đầu làm: trạng thái khâu 0 → 1
func (s *AssignmentService) StartStage(ctx context.Context, assignmentID string, worker *entity.User) error {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newValidationError("assignment %s not found", assignmentID)
		}
		return wrapStorage("load assignment", err)
	}
	if !assignmentBelongsTo(assignment, worker) {
		return newValidationError("assignment %s does not belong to worker %d", assignmentID, worker.ID)
	}
	if assignment.StageStatus >= entity.StageStatusInProgress {
		return newConflictError("assignment %s already started", assignmentID)
	}
	if err := s.assignmentRepo.UpdateStageStatus(ctx, nil, assignmentID, entity.StageStatusInProgress, nil); err != nil {
		return wrapStorage("update stage status", err)
	}
	return nil
}

// SubmitStageData thợ nộp số liệu kỹ thuật: tạo StageDetail chờ KCS duyệt
// và chuyển khâu sang Done trong cùng transaction. stage_detail_id chỉ được
// gắn đúng tại bước chuyển này. Nộp lại sau khi bị từ chối tạo bản ghi mới,
// bản bị từ chối giữ nguyên.
func (s *AssignmentService) SubmitStageData(ctx context.Context, assignmentID string, data entity.JSONB, worker *entity.User) (*entity.StageDetail, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("assignment %s not found", assignmentID)
		}
		return nil, wrapStorage("load assignment", err)
	}
	if !assignmentBelongsTo(assignment, worker) {
		return nil, newValidationError("assignment %s does not belong to worker %d", assignmentID, worker.ID)
	}

	// Chỉ chặn nộp lại khi bản nộp hiện tại còn chờ hoặc đã duyệt
	if assignment.StageDetailID != nil && *assignment.StageDetailID != "" {
		current, err := s.detailRepo.FindByID(ctx, *assignment.StageDetailID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, wrapStorage("load current stage detail", err)
		}
		if current != nil && current.ApprovalStatus != entity.ApprovalStatusRejected {
			return nil, newConflictError("assignment %s already has a pending or approved submission", assignmentID)
		}
	}

	detail := &entity.StageDetail{
		ID:             uuid.New().String(),
		AssignmentID:   assignment.ID,
		DrawingID:      assignment.DrawingID,
		Stage:          assignment.Stage,
		Data:           data,
		ApprovalStatus: entity.ApprovalStatusPending,
		SubmittedBy:    worker.ID,
		SubmittedAt:    time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.detailRepo.Create(ctx, tx, detail); err != nil {
			return wrapStorage("create stage detail", err)
		}
		if err := s.assignmentRepo.UpdateStageStatus(ctx, tx, assignment.ID, entity.StageStatusDone, &detail.ID); err != nil {
			return wrapStorage("update stage status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stage data submitted",
		zap.String("assignment_id", assignment.ID),
		zap.String("bangve_id", assignment.DrawingID),
		zap.String("stage", assignment.Stage),
	)
	s.hub.Broadcast(sse.EventStageSubmitted, assignment.DrawingID)
	return detail, nil
}

// ByDrawing danh sách phân công đang hoạt động của một bảng vẽ
func (s *AssignmentService) ByDrawing(ctx context.Context, drawingID string) ([]entity.Assignment, error) {
	assignments, err := s.assignmentRepo.ByDrawing(ctx, drawingID)
	if err != nil {
		return nil, wrapStorage("load assignments", err)
	}
	return assignments, nil
}

func assignmentBelongsTo(a *entity.Assignment, worker *entity.User) bool {
	if a.WorkerID != 0 && a.WorkerID == worker.ID {
		return true
	}
	return a.FirebaseUID != "" && a.FirebaseUID == worker.FirebaseUID
}
