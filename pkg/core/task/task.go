// Package task 定义评论任务的领域模型与状态机规则
package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type 任务类型
type Type string

const (
	TypeSearch   Type = "SEARCH"   // 关键词搜索任务
	TypeHomepage Type = "HOMEPAGE" // 首页推荐流任务
)

// Status 任务状态
type Status string

const (
	StatusIdle      Status = "IDLE"      // 空闲（等待调度）
	StatusRunning   Status = "RUNNING"   // 执行中
	StatusPaused    Status = "PAUSED"    // 已暂停（可恢复）
	StatusCompleted Status = "COMPLETED" // 已完成（终态）
	StatusError     Status = "ERROR"     // 执行失败（终态）
)

// TriggerType 触发类型
type TriggerType string

const (
	TriggerImmediate TriggerType = "IMMEDIATE" // 立即执行一次
	TriggerScheduled TriggerType = "SCHEDULED" // 指定时间执行一次
	TriggerInterval  TriggerType = "INTERVAL"  // 按固定间隔重复执行
)

// Task 评论任务聚合根
type Task struct {
	ID                    string      `json:"id" db:"id"`
	Type                  Type        `json:"type" db:"type"`
	Status                Status      `json:"status" db:"status"`
	Keywords              []string    `json:"keywords"`              // SEARCH任务的关键词列表
	SortType              string      `json:"sort_type"`             // 搜索排序方式（如 general/time_descending）
	NoteType              string      `json:"note_type"`             // 笔记类型过滤（如 all/video/normal）
	Comments              []string    `json:"comments"`              // 候选评论内容列表
	MinDelay              int         `json:"min_delay"`             // 单条评论前的最小延迟（秒）
	MaxDelay              int         `json:"max_delay"`             // 单条评论前的最大延迟（秒）
	MaxComments           int         `json:"max_comments"`          // 评论数量上限
	CompletedComments     int         `json:"completed_comments"`    // 已完成评论数（单调递增，重置除外）
	TriggerType           TriggerType `json:"trigger_type"`
	ScheduleTime          *time.Time  `json:"schedule_time,omitempty"`   // SCHEDULED任务的执行时间
	IntervalMinutes       int         `json:"interval_minutes,omitempty"` // INTERVAL任务的执行周期（分钟）
	ExecuteOnStartup      bool        `json:"execute_on_startup"`        // 进程启动时是否自动执行
	RescheduleAfterUpdate bool        `json:"reschedule_after_update"`   // 更新后是否重新调度
	Error                 string      `json:"error,omitempty"` // 最近一次失败信息
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// New 创建新任务（生成ID与时间戳，初始状态IDLE）
func New() *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.NewString(),
		Status:    StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate 校验任务字段合法性（API边界同步校验）
func (t *Task) Validate() error {
	switch t.Type {
	case TypeSearch:
		if len(t.Keywords) == 0 {
			return fmt.Errorf("SEARCH任务必须提供至少一个关键词")
		}
	case TypeHomepage:
		// 首页任务无需关键词
	default:
		return fmt.Errorf("未知任务类型: %s", t.Type)
	}

	if len(t.Comments) == 0 {
		return fmt.Errorf("必须提供至少一条候选评论")
	}
	if t.MaxComments <= 0 {
		return fmt.Errorf("max_comments 必须大于0")
	}
	if t.MinDelay < 0 || t.MaxDelay < 0 {
		return fmt.Errorf("延迟时间不能为负数")
	}
	if t.MinDelay > t.MaxDelay {
		return fmt.Errorf("min_delay 不能大于 max_delay")
	}

	switch t.TriggerType {
	case TriggerImmediate:
	case TriggerScheduled:
		if t.ScheduleTime == nil {
			return fmt.Errorf("SCHEDULED任务必须提供 schedule_time")
		}
	case TriggerInterval:
		if t.IntervalMinutes <= 0 {
			return fmt.Errorf("INTERVAL任务的 interval_minutes 必须大于0")
		}
	default:
		return fmt.Errorf("未知触发类型: %s", t.TriggerType)
	}
	return nil
}

// QuotaReached 判断评论额度是否已用完
func (t *Task) QuotaReached() bool {
	return t.CompletedComments >= t.MaxComments
}

// IsTerminal 判断是否处于终态（COMPLETED/ERROR）
func (t *Task) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusError
}

// CanTransition 校验状态机转换是否合法
// 合法转换：
//
//	IDLE      -> RUNNING
//	RUNNING   -> PAUSED | COMPLETED | ERROR
//	PAUSED    -> RUNNING
//	COMPLETED -> RUNNING （显式重启，重置进度）
//	ERROR     -> RUNNING （显式重启，重置进度）
func CanTransition(from, to Status) bool {
	switch from {
	case StatusIdle:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusPaused || to == StatusCompleted || to == StatusError
	case StatusPaused:
		return to == StatusRunning
	case StatusCompleted, StatusError:
		// 终态只允许显式重启
		return to == StatusRunning
	}
	return false
}

// ResetProgress 重置执行进度（显式重启/调度器自愈时调用）
func (t *Task) ResetProgress() {
	t.CompletedComments = 0
	t.Error = ""
}
