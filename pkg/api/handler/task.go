// Package handler 实现API层的HTTP处理器
package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/dto"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/engine"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
)

// TaskHandler 任务API处理器
type TaskHandler struct {
	engine *engine.Engine
}

// NewTaskHandler 创建TaskHandler
func NewTaskHandler(eng *engine.Engine) *TaskHandler {
	return &TaskHandler{engine: eng}
}

// Create 创建任务
// POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数无效: %v", err)))
		return
	}

	created, err := h.engine.CreateTask(c.Request.Context(), req.ToTask())
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(created))
}

// List 列出所有任务
// GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.engine.ListTasks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询任务失败: %v", err)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*task.Task]{
		Total: len(tasks),
		Items: tasks,
	}))
}

// Get 获取单个任务
// GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.engine.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询任务失败: %v", err)))
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "任务不存在"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(t))
}

// Update 部分更新任务
// PUT /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	cur, err := h.engine.GetTask(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询任务失败: %v", err)))
		return
	}
	if cur == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "任务不存在"))
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数无效: %v", err)))
		return
	}
	req.ApplyTo(cur)

	updated, err := h.engine.UpdateTask(ctx, cur)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(updated))
}

// ChangeStatus 用户驱动的状态变更
// POST /api/v1/tasks/:id/status
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数无效: %v", err)))
		return
	}

	t, err := h.engine.ChangeStatus(c.Request.Context(), c.Param("id"), task.Status(req.Status))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, err.Error()))
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "任务不存在"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(t))
}

// Delete 删除任务（先取消在途执行）
// DELETE /api/v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	t, err := h.engine.GetTask(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询任务失败: %v", err)))
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "任务不存在"))
		return
	}

	if err := h.engine.DeleteTask(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("删除任务失败: %v", err)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"deleted": id}))
}

// Logs 查询任务的评论日志
// GET /api/v1/tasks/:id/logs
func (h *TaskHandler) Logs(c *gin.Context) {
	logs, err := h.engine.ListTaskLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询日志失败: %v", err)))
		return
	}

	items := make([]dto.TaskLogItem, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.TaskLogItem{
			ID:        l.ID,
			TaskID:    l.TaskID,
			NoteID:    l.NoteID,
			NoteTitle: l.NoteTitle,
			Comment:   l.Comment,
			Timestamp: l.Timestamp,
			Success:   l.Success,
			Error:     l.Error,
		})
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[dto.TaskLogItem]{
		Total: len(items),
		Items: items,
	}))
}
