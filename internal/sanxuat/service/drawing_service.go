package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
)

// DrawingService nghiệp vụ bảng vẽ: tạo, tra cứu, danh sách
type DrawingService struct {
	drawingRepo    *repository.DrawingRepository
	assignmentRepo *repository.AssignmentRepository
	detailRepo     *repository.StageDetailRepository
}

// NewDrawingService tạo service bảng vẽ
func NewDrawingService(repos *repository.Repositories) *DrawingService {
	return &DrawingService{
		drawingRepo:    repos.Drawing,
		assignmentRepo: repos.Assignment,
		detailRepo:     repos.StageDetail,
	}
}

// CreateDrawingRequest tham số tạo bảng vẽ
type CreateDrawingRequest struct {
	Symbol  string       `json:"ky_hieu" binding:"required"`
	Power   string       `json:"cong_suat"`
	Voltage string       `json:"dien_ap"`
	Specs   entity.JSONB `json:"thong_so"`
}

// Create tạo bảng vẽ mới ở trạng thái New
func (s *DrawingService) Create(ctx context.Context, req CreateDrawingRequest, createdBy *entity.User) (*entity.Drawing, error) {
	if !createdBy.IsManager() {
		return nil, newValidationError("user %d may not create drawings", createdBy.ID)
	}
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, newValidationError("ky_hieu is required")
	}

	drawing := &entity.Drawing{
		ID:            strings.ReplaceAll(uuid.New().String(), "-", "")[:32],
		Symbol:        strings.TrimSpace(req.Symbol),
		Power:         req.Power,
		Voltage:       req.Voltage,
		Specs:         req.Specs,
		OverallStatus: entity.DrawingStatusNew,
		CreatedBy:     createdBy.ID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.drawingRepo.Create(ctx, drawing); err != nil {
		return nil, wrapStorage("create drawing", err)
	}
	return drawing, nil
}

// DrawingDetail bảng vẽ kèm phân công và số liệu từng khâu
type DrawingDetail struct {
	Drawing     entity.Drawing       `json:"drawing"`
	Assignments []entity.Assignment  `json:"assignments"`
	Details     []entity.StageDetail `json:"stage_details"`
}

// Get bảng vẽ kèm toàn bộ phân công và bản nộp
func (s *DrawingService) Get(ctx context.Context, id string) (*DrawingDetail, error) {
	drawing, err := s.drawingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, wrapStorage("load drawing", err)
	}
	assignments, err := s.assignmentRepo.ByDrawing(ctx, id)
	if err != nil {
		return nil, wrapStorage("load assignments", err)
	}
	details, err := s.detailRepo.ByDrawing(ctx, id)
	if err != nil {
		return nil, wrapStorage("load stage details", err)
	}
	return &DrawingDetail{
		Drawing:     *drawing,
		Assignments: assignments,
		Details:     details,
	}, nil
}

// List danh sách bảng vẽ có phân trang, status < 0 nghĩa là mọi trạng thái
func (s *DrawingService) List(ctx context.Context, status, page, pageSize int) ([]entity.Drawing, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	drawings, total, err := s.drawingRepo.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, 0, wrapStorage("list drawings", err)
	}
	return drawings, total, nil
}
