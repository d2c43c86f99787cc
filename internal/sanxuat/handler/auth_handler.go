package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/service"
)

// AuthHandler xử lý đăng nhập / phiên
type AuthHandler struct {
	svc      *service.AuthService
	userRepo *repository.UserRepository
}

// NewAuthHandler tạo handler xác thực
func NewAuthHandler(svc *service.AuthService, userRepo *repository.UserRepository) *AuthHandler {
	return &AuthHandler{svc: svc, userRepo: userRepo}
}

type loginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "id_token is required")
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), req.IDToken)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "refresh_token is required")
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, pair)
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	// Body rỗng cũng chấp nhận, chỉ thu hồi khi có token
	_ = c.ShouldBindJSON(&req)
	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

// Me GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}
	role, _ := service.ClassifyRole(service.ProfileOf(user))
	Success(c, gin.H{
		"user":       user,
		"stage_role": role,
	})
}
