package storage

import (
	"context"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
)

// TaskRepository Task存储接口（对外导出）
// 所有写入都采用读取-修改-写入模式，实现必须保证读到的是本进程最近一次写入
type TaskRepository interface {
	// Save 保存Task（存在则整行更新）
	Save(ctx context.Context, t *task.Task) error

	// GetByID 根据ID查询Task，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*task.Task, error)

	// List 查询所有Task（按创建时间排序）
	List(ctx context.Context) ([]*task.Task, error)

	// Delete 删除Task
	Delete(ctx context.Context, id string) error
}

// CommentLogRepository 评论日志存储接口（对外导出）
// 日志只追加，不修改不删除
type CommentLogRepository interface {
	// Append 追加一条评论日志
	Append(ctx context.Context, l *task.CommentLog) error

	// ListByTask 查询指定任务的全部评论日志
	ListByTask(ctx context.Context, taskID string) ([]*task.CommentLog, error)

	// NoteIDsByTask 查询指定任务已操作过的全部noteId（去重依据）
	NoteIDsByTask(ctx context.Context, taskID string) ([]string, error)
}

// TemplateRepository 评论模板存储接口（对外导出）
type TemplateRepository interface {
	Save(ctx context.Context, t *task.Template) error
	GetByID(ctx context.Context, id string) (*task.Template, error)
	List(ctx context.Context) ([]*task.Template, error)
	Delete(ctx context.Context, id string) error
}

// SettingRepository 键值设置存储接口（对外导出）
// 保存平台会话凭证等dashboard设置
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

// Store 存储Repository集合（对外导出）
type Store struct {
	Tasks       TaskRepository
	CommentLogs CommentLogRepository
	Templates   TemplateRepository
	Settings    SettingRepository

	closer func() error
}

// NewStoreWith 组装Store（由数据库工厂调用）
func NewStoreWith(tasks TaskRepository, logs CommentLogRepository, templates TemplateRepository, settings SettingRepository, closer func() error) *Store {
	return &Store{
		Tasks:       tasks,
		CommentLogs: logs,
		Templates:   templates,
		Settings:    settings,
		closer:      closer,
	}
}

// Close 关闭底层数据库连接
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
