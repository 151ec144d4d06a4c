package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/dto"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// TemplateHandler 评论模板API处理器
type TemplateHandler struct {
	templates storage.TemplateRepository
}

// NewTemplateHandler 创建TemplateHandler
func NewTemplateHandler(templates storage.TemplateRepository) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// List 列出所有模板
// GET /api/v1/templates
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询模板失败: %v", err)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*task.Template]{
		Total: len(templates),
		Items: templates,
	}))
}

// Create 创建模板
// POST /api/v1/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数无效: %v", err)))
		return
	}

	t := task.NewTemplate(req.Name, req.Content)
	if err := t.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, err.Error()))
		return
	}
	if err := h.templates.Save(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("保存模板失败: %v", err)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(t))
}

// Update 更新模板
// PUT /api/v1/templates/:id
func (h *TemplateHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	cur, err := h.templates.GetByID(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询模板失败: %v", err)))
		return
	}
	if cur == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "模板不存在"))
		return
	}

	var req dto.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数无效: %v", err)))
		return
	}

	cur.Name = req.Name
	cur.Content = req.Content
	cur.UpdatedAt = time.Now()
	if err := cur.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, err.Error()))
		return
	}
	if err := h.templates.Save(ctx, cur); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("保存模板失败: %v", err)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(cur))
}

// Delete 删除模板
// DELETE /api/v1/templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("删除模板失败: %v", err)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"deleted": id}))
}
