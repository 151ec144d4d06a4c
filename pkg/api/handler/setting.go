package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/dto"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// 平台会话相关的设置键
const (
	SettingA1             = "a1"
	SettingWebSession     = "web_session"
	SettingSignServiceURL = "sign_service_url"
)

// SettingHandler 设置API处理器
type SettingHandler struct {
	settings storage.SettingRepository
}

// NewSettingHandler 创建SettingHandler
func NewSettingHandler(settings storage.SettingRepository) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// Get 获取全部设置
// GET /api/v1/settings
func (h *SettingHandler) Get(c *gin.Context) {
	settings, err := h.settings.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询设置失败: %v", err)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SettingsResponse{Settings: settings}))
}

// Update 更新设置（逐键写入）
// PUT /api/v1/settings
func (h *SettingHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数无效: %v", err)))
		return
	}

	ctx := c.Request.Context()
	for key, value := range req.Settings {
		if err := h.settings.Set(ctx, key, value); err != nil {
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("写入设置失败: %v", err)))
			return
		}
	}

	settings, err := h.settings.All(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询设置失败: %v", err)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SettingsResponse{Settings: settings}))
}
