package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/service"
)

// DrawingHandler xử lý API bảng vẽ
type DrawingHandler struct {
	svc       *service.DrawingService
	reportSvc *service.ReportService
	fileSvc   *service.FileService
	userRepo  *repository.UserRepository
}

// NewDrawingHandler tạo handler bảng vẽ
func NewDrawingHandler(svc *service.DrawingService, reportSvc *service.ReportService, fileSvc *service.FileService, userRepo *repository.UserRepository) *DrawingHandler {
	return &DrawingHandler{svc: svc, reportSvc: reportSvc, fileSvc: fileSvc, userRepo: userRepo}
}

// List GET /api/v1/bangve?status=&page=&page_size=
func (h *DrawingHandler) List(c *gin.Context) {
	status := -1
	if s := c.Query("status"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			BadRequest(c, "status must be a number")
			return
		}
		status = v
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	drawings, total, err := h.svc.List(c.Request.Context(), status, page, pageSize)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: drawings,
		Pagination: &Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// Create POST /api/v1/bangve
func (h *DrawingHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req service.CreateDrawingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	drawing, err := h.svc.Create(c.Request.Context(), req, user)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, drawing)
}

// Get GET /api/v1/bangve/:id
func (h *DrawingHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, detail)
}

// Export GET /api/v1/bangve/export
func (h *DrawingHandler) Export(c *gin.Context) {
	data, err := h.reportSvc.ExportProgress(c.Request.Context())
	if err != nil {
		FromError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tien-do-san-xuat.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ListFiles GET /api/v1/bangve/:id/files
func (h *DrawingHandler) ListFiles(c *gin.Context) {
	files, err := h.fileSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, files)
}

// UploadFile POST /api/v1/bangve/:id/files (multipart)
func (h *DrawingHandler) UploadFile(c *gin.Context) {
	user, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "cannot read uploaded file")
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	file, err := h.fileSvc.Upload(c.Request.Context(), c.Param("id"),
		fileHeader.Filename, contentType, fileHeader.Size, src, user.ID)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, file)
}

// DownloadFile GET /api/v1/files/:fileId/download
func (h *DrawingHandler) DownloadFile(c *gin.Context) {
	url, err := h.fileSvc.DownloadURL(c.Request.Context(), c.Param("fileId"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"url": url})
}
