package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/service"
)

// ApprovalHandler xử lý API duyệt KCS
type ApprovalHandler struct {
	svc      *service.ApprovalService
	userRepo *repository.UserRepository
}

// NewApprovalHandler tạo handler duyệt KCS
func NewApprovalHandler(svc *service.ApprovalService, userRepo *repository.UserRepository) *ApprovalHandler {
	return &ApprovalHandler{svc: svc, userRepo: userRepo}
}

// Pending GET /api/v1/reviews/pending — bản nộp đang chờ duyệt
func (h *ApprovalHandler) Pending(c *gin.Context) {
	details, err := h.svc.PendingReviews(c.Request.Context())
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, details)
}

type reviewRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Comment string `json:"comment"`
}

// Review POST /api/v1/reviews/:detailId — KCS duyệt hoặc từ chối một bản nộp
func (h *ApprovalHandler) Review(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "approve is required")
		return
	}

	if err := h.svc.Review(c.Request.Context(), c.Param("detailId"), *req.Approve, req.Comment, user); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

// CanFinalize GET /api/v1/bangve/:id/can-finalize
func (h *ApprovalHandler) CanFinalize(c *gin.Context) {
	ok, err := h.svc.CanFinalize(c.Request.Context(), c.Param("id"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"can_finalize": ok})
}

// Finalize POST /api/v1/bangve/:id/finalize — chốt hoàn thành bảng vẽ
func (h *ApprovalHandler) Finalize(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}
	if err := h.svc.Finalize(c.Request.Context(), c.Param("id"), user); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}
