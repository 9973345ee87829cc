package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/recall/internal/middleware"
	"github.com/ashwinyue/recall/internal/service"
	"github.com/ashwinyue/recall/internal/service/ingest"
)

// DocumentHandler 文档处理器
type DocumentHandler struct {
	svc *service.Services
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(svc *service.Services) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload 上传文档
// POST /api/v1/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		Unauthorized(c, "tenant not resolved")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalServerError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.svc.Ingest.Upload(c.Request.Context(), &ingest.UploadRequest{
		TenantID: tenantID,
		Title:    c.PostForm("title"),
		FileName: fileHeader.Filename,
		Reader:   file,
	})
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, doc)
}

// Process 处理文档（解析、分块、向量化、索引）
// POST /api/v1/documents/:id/process
func (h *DocumentHandler) Process(c *gin.Context) {
	doc, err := h.svc.Ingest.Get(c.Param("id"))
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	if doc == nil || doc.TenantID != middleware.GetTenantID(c) {
		NotFound(c, "document not found")
		return
	}

	result, err := h.svc.Ingest.Process(c.Request.Context(), doc.ID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	Success(c, result)
}

// List 按租户列出文档
// GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		Unauthorized(c, "tenant not resolved")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	docs, total, err := h.svc.Ingest.List(tenantID, (page-1)*pageSize, pageSize)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	SuccessWithPagination(c, docs, total, page, pageSize)
}

// Get 获取文档
// GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.svc.Ingest.Get(c.Param("id"))
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	if doc == nil || doc.TenantID != middleware.GetTenantID(c) {
		NotFound(c, "document not found")
		return
	}
	Success(c, doc)
}
