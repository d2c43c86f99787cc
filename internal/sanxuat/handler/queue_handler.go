package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/service"
)

// QueueHandler xử lý API hàng đợi của thợ
type QueueHandler struct {
	svc      *service.QueueService
	userRepo *repository.UserRepository
}

// NewQueueHandler tạo handler hàng đợi
func NewQueueHandler(svc *service.QueueService, userRepo *repository.UserRepository) *QueueHandler {
	return &QueueHandler{svc: svc, userRepo: userRepo}
}

// MyQueues GET /api/v1/queues/me — ba ngăn của thợ đang đăng nhập
func (h *QueueHandler) MyQueues(c *gin.Context) {
	uid, exists := c.Get("user_id")
	if !exists {
		Error(c, 40100, "Authorization is required")
		return
	}
	buckets, err := h.svc.Queues(c.Request.Context(), uid.(uint))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, buckets)
}

// MyQueuesTrace GET /api/v1/queues/me/trace — kèm vết pipeline cho màn hình kiểm tra
func (h *QueueHandler) MyQueuesTrace(c *gin.Context) {
	uid, exists := c.Get("user_id")
	if !exists {
		Error(c, 40100, "Authorization is required")
		return
	}
	trace, err := h.svc.QueuesTrace(c.Request.Context(), uid.(uint))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, trace)
}

// WorkerQueues GET /api/v1/queues/:workerId — quản đốc xem hàng đợi của thợ khác
func (h *QueueHandler) WorkerQueues(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}
	if !user.IsManager() {
		Error(c, 40300, "only managers may view other workers' queues")
		return
	}

	workerID, err := strconv.ParseUint(c.Param("workerId"), 10, 32)
	if err != nil {
		BadRequest(c, "workerId must be a number")
		return
	}
	buckets, err := h.svc.Queues(c.Request.Context(), uint(workerID))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, buckets)
}
