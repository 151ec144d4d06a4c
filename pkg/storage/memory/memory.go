// Package memory 提供存储接口的内存实现
// 用于单元测试与无持久化的本地试运行
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// NewStore 创建内存Store
func NewStore() *storage.Store {
	return storage.NewStoreWith(
		NewTaskRepo(),
		NewCommentLogRepo(),
		NewTemplateRepo(),
		NewSettingRepo(),
		nil,
	)
}

// TaskRepo TaskRepository的内存实现（对外导出，测试中直接构造）
type TaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task
}

// NewTaskRepo 创建内存Task存储
func NewTaskRepo() *TaskRepo {
	return &TaskRepo{tasks: make(map[string]*task.Task)}
}

// Save 保存Task（保存副本，隔离调用方的后续修改）
func (r *TaskRepo) Save(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

// GetByID 根据ID查询Task
func (r *TaskRepo) GetByID(_ context.Context, id string) (*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// List 查询所有Task（按创建时间排序）
func (r *TaskRepo) List(_ context.Context) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*task.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		cp := *t
		tasks = append(tasks, &cp)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Delete 删除Task
func (r *TaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

// CommentLogRepo CommentLogRepository的内存实现（对外导出）
type CommentLogRepo struct {
	mu   sync.RWMutex
	logs []*task.CommentLog
}

// NewCommentLogRepo 创建内存评论日志存储
func NewCommentLogRepo() *CommentLogRepo {
	return &CommentLogRepo{}
}

// Append 追加一条评论日志
func (r *CommentLogRepo) Append(_ context.Context, l *task.CommentLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.logs = append(r.logs, &cp)
	return nil
}

// ListByTask 查询指定任务的全部评论日志
func (r *CommentLogRepo) ListByTask(_ context.Context, taskID string) ([]*task.CommentLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := make([]*task.CommentLog, 0)
	for _, l := range r.logs {
		if l.TaskID == taskID {
			cp := *l
			logs = append(logs, &cp)
		}
	}
	return logs, nil
}

// NoteIDsByTask 查询指定任务已操作过的noteId集合
func (r *CommentLogRepo) NoteIDsByTask(_ context.Context, taskID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, l := range r.logs {
		if l.TaskID != taskID {
			continue
		}
		if _, ok := seen[l.NoteID]; ok {
			continue
		}
		seen[l.NoteID] = struct{}{}
		ids = append(ids, l.NoteID)
	}
	return ids, nil
}

// TemplateRepo TemplateRepository的内存实现（对外导出）
type TemplateRepo struct {
	mu        sync.RWMutex
	templates map[string]*task.Template
}

// NewTemplateRepo 创建内存模板存储
func NewTemplateRepo() *TemplateRepo {
	return &TemplateRepo{templates: make(map[string]*task.Template)}
}

// Save 保存模板
func (r *TemplateRepo) Save(_ context.Context, t *task.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

// GetByID 根据ID查询模板
func (r *TemplateRepo) GetByID(_ context.Context, id string) (*task.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// List 查询所有模板
func (r *TemplateRepo) List(_ context.Context) ([]*task.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]*task.Template, 0, len(r.templates))
	for _, t := range r.templates {
		cp := *t
		templates = append(templates, &cp)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})
	return templates, nil
}

// Delete 删除模板
func (r *TemplateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.templates, id)
	return nil
}

// SettingRepo SettingRepository的内存实现（对外导出）
type SettingRepo struct {
	mu       sync.RWMutex
	settings map[string]string
}

// NewSettingRepo 创建内存设置存储
func NewSettingRepo() *SettingRepo {
	return &SettingRepo{settings: make(map[string]string)}
}

// Get 查询单个设置项
func (r *SettingRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings[key], nil
}

// Set 写入设置项
func (r *SettingRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = value
	return nil
}

// All 查询全部设置项
func (r *SettingRepo) All(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings := make(map[string]string, len(r.settings))
	for k, v := range r.settings {
		settings[k] = v
	}
	return settings, nil
}

var (
	_ storage.TaskRepository       = (*TaskRepo)(nil)
	_ storage.CommentLogRepository = (*CommentLogRepo)(nil)
	_ storage.TemplateRepository   = (*TemplateRepo)(nil)
	_ storage.SettingRepository    = (*SettingRepo)(nil)
)
