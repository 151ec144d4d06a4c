// Package dao 定义存储层的数据访问对象
package dao

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
)

// TaskDAO tasks表的数据访问对象（内部使用）
type TaskDAO struct {
	ID                    string         `db:"id"`
	Type                  string         `db:"type"`
	Status                string         `db:"status"`
	Keywords              string         `db:"keywords"` // JSON格式存储
	SortType              string         `db:"sort_type"`
	NoteType              string         `db:"note_type"`
	Comments              string         `db:"comments"` // JSON格式存储
	MinDelay              int            `db:"min_delay"`
	MaxDelay              int            `db:"max_delay"`
	MaxComments           int            `db:"max_comments"`
	CompletedComments     int            `db:"completed_comments"`
	TriggerType           string         `db:"trigger_type"`
	ScheduleTime          sql.NullTime   `db:"schedule_time"`
	IntervalMinutes       int            `db:"interval_minutes"`
	ExecuteOnStartup      bool           `db:"execute_on_startup"`
	RescheduleAfterUpdate bool           `db:"reschedule_after_update"`
	ErrorMessage          sql.NullString `db:"error_msg"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

// FromTask 将领域对象转换为DAO
func FromTask(t *task.Task) (*TaskDAO, error) {
	keywordsJSON, err := json.Marshal(t.Keywords)
	if err != nil {
		return nil, fmt.Errorf("序列化关键词失败: %w", err)
	}
	commentsJSON, err := json.Marshal(t.Comments)
	if err != nil {
		return nil, fmt.Errorf("序列化评论列表失败: %w", err)
	}

	d := &TaskDAO{
		ID:                    t.ID,
		Type:                  string(t.Type),
		Status:                string(t.Status),
		Keywords:              string(keywordsJSON),
		SortType:              t.SortType,
		NoteType:              t.NoteType,
		Comments:              string(commentsJSON),
		MinDelay:              t.MinDelay,
		MaxDelay:              t.MaxDelay,
		MaxComments:           t.MaxComments,
		CompletedComments:     t.CompletedComments,
		TriggerType:           string(t.TriggerType),
		IntervalMinutes:       t.IntervalMinutes,
		ExecuteOnStartup:      t.ExecuteOnStartup,
		RescheduleAfterUpdate: t.RescheduleAfterUpdate,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
	if t.ScheduleTime != nil {
		d.ScheduleTime.Valid = true
		d.ScheduleTime.Time = *t.ScheduleTime
	}
	if t.Error != "" {
		d.ErrorMessage.Valid = true
		d.ErrorMessage.String = t.Error
	}
	return d, nil
}

// ToTask 将DAO转换为领域对象
func (d *TaskDAO) ToTask() (*task.Task, error) {
	t := &task.Task{
		ID:                    d.ID,
		Type:                  task.Type(d.Type),
		Status:                task.Status(d.Status),
		SortType:              d.SortType,
		NoteType:              d.NoteType,
		MinDelay:              d.MinDelay,
		MaxDelay:              d.MaxDelay,
		MaxComments:           d.MaxComments,
		CompletedComments:     d.CompletedComments,
		TriggerType:           task.TriggerType(d.TriggerType),
		IntervalMinutes:       d.IntervalMinutes,
		ExecuteOnStartup:      d.ExecuteOnStartup,
		RescheduleAfterUpdate: d.RescheduleAfterUpdate,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
	if d.Keywords != "" {
		if err := json.Unmarshal([]byte(d.Keywords), &t.Keywords); err != nil {
			return nil, fmt.Errorf("反序列化关键词失败: %w", err)
		}
	}
	if d.Comments != "" {
		if err := json.Unmarshal([]byte(d.Comments), &t.Comments); err != nil {
			return nil, fmt.Errorf("反序列化评论列表失败: %w", err)
		}
	}
	if d.ScheduleTime.Valid {
		st := d.ScheduleTime.Time
		t.ScheduleTime = &st
	}
	if d.ErrorMessage.Valid {
		t.Error = d.ErrorMessage.String
	}
	return t, nil
}
