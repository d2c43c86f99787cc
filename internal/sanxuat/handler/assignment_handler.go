package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/service"
)

// AssignmentHandler xử lý API phân công
type AssignmentHandler struct {
	svc      *service.AssignmentService
	userRepo *repository.UserRepository
}

// NewAssignmentHandler tạo handler phân công
func NewAssignmentHandler(svc *service.AssignmentService, userRepo *repository.UserRepository) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, userRepo: userRepo}
}

type assignRequest struct {
	LowWorkerID  uint `json:"low_worker_id" binding:"required"`
	HighWorkerID uint `json:"high_worker_id" binding:"required"`
}

// Assign POST /api/v1/bangve/:id/assign — quản đốc gán thợ hạ và thợ cao
func (h *AssignmentHandler) Assign(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}
	if !user.IsManager() {
		Error(c, 40300, "only managers may assign drawings")
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "low_worker_id and high_worker_id are required")
		return
	}

	result, err := h.svc.Assign(c.Request.Context(), c.Param("id"), req.LowWorkerID, req.HighWorkerID, user.ID)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, result)
}

type assignPressRequest struct {
	PressWorkerID uint `json:"press_worker_id" binding:"required"`
}

// AssignPress POST /api/v1/bangve/:id/assign-press
func (h *AssignmentHandler) AssignPress(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}
	if !user.IsManager() {
		Error(c, 40300, "only managers may assign drawings")
		return
	}

	var req assignPressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "press_worker_id is required")
		return
	}

	id, err := h.svc.AssignPress(c.Request.Context(), c.Param("id"), req.PressWorkerID, user.ID)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, gin.H{"assignment_id": id})
}

// ByDrawing GET /api/v1/bangve/:id/assignments
func (h *AssignmentHandler) ByDrawing(c *gin.Context) {
	assignments, err := h.svc.ByDrawing(c.Request.Context(), c.Param("id"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, assignments)
}

// Start POST /api/v1/assignments/:id/start — thợ bắt đầu làm
func (h *AssignmentHandler) Start(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}
	if err := h.svc.StartStage(c.Request.Context(), c.Param("id"), user); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

type submitRequest struct {
	Data entity.JSONB `json:"data" binding:"required"`
}

// Submit POST /api/v1/assignments/:id/submit — thợ nộp số liệu kỹ thuật
func (h *AssignmentHandler) Submit(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "data is required")
		return
	}

	detail, err := h.svc.SubmitStageData(c.Request.Context(), c.Param("id"), req.Data, user)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, detail)
}
