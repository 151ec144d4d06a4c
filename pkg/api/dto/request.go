package dto

import (
	"time"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
)

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Type                  string     `json:"type" binding:"required"`
	Keywords              []string   `json:"keywords"`
	SortType              string     `json:"sort_type"`
	NoteType              string     `json:"note_type"`
	Comments              []string   `json:"comments" binding:"required"`
	MinDelay              int        `json:"min_delay"`
	MaxDelay              int        `json:"max_delay"`
	MaxComments           int        `json:"max_comments" binding:"required"`
	TriggerType           string     `json:"trigger_type" binding:"required"`
	ScheduleTime          *time.Time `json:"schedule_time"`
	IntervalMinutes       int        `json:"interval_minutes"`
	ExecuteOnStartup      bool       `json:"execute_on_startup"`
	RescheduleAfterUpdate bool       `json:"reschedule_after_update"`
}

// ToTask 转换为领域对象（生成ID与时间戳）
func (r *CreateTaskRequest) ToTask() *task.Task {
	t := task.New()
	t.Type = task.Type(r.Type)
	t.Keywords = r.Keywords
	t.SortType = r.SortType
	t.NoteType = r.NoteType
	t.Comments = r.Comments
	t.MinDelay = r.MinDelay
	t.MaxDelay = r.MaxDelay
	t.MaxComments = r.MaxComments
	t.TriggerType = task.TriggerType(r.TriggerType)
	t.ScheduleTime = r.ScheduleTime
	t.IntervalMinutes = r.IntervalMinutes
	t.ExecuteOnStartup = r.ExecuteOnStartup
	t.RescheduleAfterUpdate = r.RescheduleAfterUpdate
	return t
}

// UpdateTaskRequest 更新任务请求（字段为空指针时不修改）
type UpdateTaskRequest struct {
	Type                  *string    `json:"type"`
	Keywords              []string   `json:"keywords"`
	SortType              *string    `json:"sort_type"`
	NoteType              *string    `json:"note_type"`
	Comments              []string   `json:"comments"`
	MinDelay              *int       `json:"min_delay"`
	MaxDelay              *int       `json:"max_delay"`
	MaxComments           *int       `json:"max_comments"`
	TriggerType           *string    `json:"trigger_type"`
	ScheduleTime          *time.Time `json:"schedule_time"`
	IntervalMinutes       *int       `json:"interval_minutes"`
	ExecuteOnStartup      *bool      `json:"execute_on_startup"`
	RescheduleAfterUpdate *bool      `json:"reschedule_after_update"`
}

// ApplyTo 将非空字段合并到现有任务
func (r *UpdateTaskRequest) ApplyTo(t *task.Task) {
	if r.Type != nil {
		t.Type = task.Type(*r.Type)
	}
	if r.Keywords != nil {
		t.Keywords = r.Keywords
	}
	if r.SortType != nil {
		t.SortType = *r.SortType
	}
	if r.NoteType != nil {
		t.NoteType = *r.NoteType
	}
	if r.Comments != nil {
		t.Comments = r.Comments
	}
	if r.MinDelay != nil {
		t.MinDelay = *r.MinDelay
	}
	if r.MaxDelay != nil {
		t.MaxDelay = *r.MaxDelay
	}
	if r.MaxComments != nil {
		t.MaxComments = *r.MaxComments
	}
	if r.TriggerType != nil {
		t.TriggerType = task.TriggerType(*r.TriggerType)
	}
	if r.ScheduleTime != nil {
		t.ScheduleTime = r.ScheduleTime
	}
	if r.IntervalMinutes != nil {
		t.IntervalMinutes = *r.IntervalMinutes
	}
	if r.ExecuteOnStartup != nil {
		t.ExecuteOnStartup = *r.ExecuteOnStartup
	}
	if r.RescheduleAfterUpdate != nil {
		t.RescheduleAfterUpdate = *r.RescheduleAfterUpdate
	}
}

// ChangeStatusRequest 状态变更请求
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TemplateRequest 创建/更新模板请求
type TemplateRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
