package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/dto"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/broadcast"
)

// StreamHandler 任务快照推送处理器（SSE与WebSocket两种通道）
type StreamHandler struct {
	broadcaster *broadcast.Broadcaster
	upgrader    websocket.Upgrader
}

// NewStreamHandler 创建StreamHandler
func NewStreamHandler(b *broadcast.Broadcaster) *StreamHandler {
	return &StreamHandler{
		broadcaster: b,
		upgrader: websocket.Upgrader{
			// dashboard前端独立部署，放开跨域握手
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// SSE 任务快照SSE推送
// GET /api/v1/tasks/sse
// 每个事件负载为当前全量任务数组的JSON
func (h *StreamHandler) SSE(c *gin.Context) {
	ctx := c.Request.Context()

	snapshots, err := h.broadcaster.Subscribe(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("订阅失败: %v", err)))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("tasks", string(payload))
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// WS 任务快照WebSocket推送
// GET /api/v1/tasks/ws
func (h *StreamHandler) WS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ [推送] WebSocket握手失败: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	snapshots, err := h.broadcaster.Subscribe(ctx)
	if err != nil {
		log.Printf("⚠️ [推送] WebSocket订阅失败: %v", err)
		return
	}

	// 读循环仅用于感知客户端断开
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case payload, ok := <-snapshots:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				// 断连即丢弃，订阅随ctx取消自动清理
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
