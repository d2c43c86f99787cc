package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/config"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/middleware"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/service"
)

// Handlers tập hợp handler
type Handlers struct {
	Auth       *AuthHandler
	Drawing    *DrawingHandler
	Assignment *AssignmentHandler
	Queue      *QueueHandler
	Approval   *ApprovalHandler
	SSE        *SSEHandler
}

// NewHandlers tạo tập hợp handler
func NewHandlers(svc *service.Services, repos *repository.Repositories, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth, repos.User),
		Drawing:    NewDrawingHandler(svc.Drawing, svc.Report, svc.File, repos.User),
		Assignment: NewAssignmentHandler(svc.Assignment, repos.User),
		Queue:      NewQueueHandler(svc.Queue, repos.User),
		Approval:   NewApprovalHandler(svc.Approval, repos.User),
		SSE:        NewSSEHandler(svc.Hub),
	}
}

// RegisterRoutes gắn toàn bộ route API
func (h *Handlers) RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	r.POST("/api/v1/auth/login", h.Auth.Login)
	r.POST("/api/v1/auth/refresh", h.Auth.Refresh)

	api := r.Group("/api/v1", middleware.JWTAuth(cfg.JWT.Secret))
	{
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)

		api.GET("/bangve", h.Drawing.List)
		api.POST("/bangve", h.Drawing.Create)
		api.GET("/bangve/export", h.Drawing.Export)
		api.GET("/bangve/:id", h.Drawing.Get)
		api.GET("/bangve/:id/files", h.Drawing.ListFiles)
		api.POST("/bangve/:id/files", h.Drawing.UploadFile)
		api.GET("/files/:fileId/download", h.Drawing.DownloadFile)

		api.POST("/bangve/:id/assign", h.Assignment.Assign)
		api.POST("/bangve/:id/assign-press", h.Assignment.AssignPress)
		api.GET("/bangve/:id/assignments", h.Assignment.ByDrawing)
		api.POST("/assignments/:id/start", h.Assignment.Start)
		api.POST("/assignments/:id/submit", h.Assignment.Submit)

		api.GET("/queues/me", h.Queue.MyQueues)
		api.GET("/queues/me/trace", h.Queue.MyQueuesTrace)
		api.GET("/queues/:workerId", h.Queue.WorkerQueues)

		api.GET("/reviews/pending", h.Approval.Pending)
		api.POST("/reviews/:detailId", h.Approval.Review)
		api.GET("/bangve/:id/can-finalize", h.Approval.CanFinalize)
		api.POST("/bangve/:id/finalize", h.Approval.Finalize)

		api.GET("/events", h.SSE.Stream)
	}
}

// Response cấu trúc phản hồi chung
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse phản hồi danh sách
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination thông tin phân trang
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Success phản hồi thành công
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created phản hồi tạo thành công
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error phản hồi lỗi
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest lỗi tham số
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// FromError đổi lỗi tầng service sang mã HTTP tương ứng
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		Error(c, 40400, "not found")
	case service.IsValidation(err):
		Error(c, 40001, err.Error())
	case service.IsConflict(err):
		Error(c, 40900, err.Error())
	case service.IsPrecondition(err):
		Error(c, 41200, err.Error())
	case service.IsStorage(err):
		Error(c, 50200, "storage error")
	default:
		Error(c, 50000, "internal error")
	}
}

// currentUser tải bản ghi người dùng của phiên hiện tại
func currentUser(c *gin.Context, users *repository.UserRepository) (*entity.User, bool) {
	uid, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, Response{Code: 40100, Message: "Authorization is required"})
		return nil, false
	}
	id, ok := uid.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Code: 40103, Message: "Invalid token claims"})
		return nil, false
	}
	user, err := users.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, Response{Code: 40104, Message: "User no longer exists"})
		return nil, false
	}
	return user, true
}
