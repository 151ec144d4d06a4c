// Package dto 定义API层的请求与响应结构
package dto

import "time"

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// ListResponse 列表响应结构
type ListResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// SettingsResponse 设置响应
type SettingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// TaskLogItem 评论日志条目
type TaskLogItem struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	NoteID    string    `json:"note_id"`
	NoteTitle string    `json:"note_title"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}
