package task

import (
	"time"

	"github.com/google/uuid"
)

// CommentLog 单次评论动作的不可变审计记录
// 一旦写入不再修改或删除，同时作为跨进程重启的去重依据
type CommentLog struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	NoteID    string    `json:"note_id" db:"note_id"`
	NoteTitle string    `json:"note_title" db:"note_title"`
	Comment   string    `json:"comment" db:"comment"` // 实际使用的评论内容
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Success   bool      `json:"success" db:"success"`
	Error     string    `json:"error,omitempty" db:"error_msg"` // 仅失败时存在
}

// NewCommentLog 创建评论记录
func NewCommentLog(taskID, noteID, noteTitle, comment string) *CommentLog {
	return &CommentLog{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		NoteID:    noteID,
		NoteTitle: noteTitle,
		Comment:   comment,
		Timestamp: time.Now(),
	}
}

// MarkSuccess 标记为成功
func (l *CommentLog) MarkSuccess() *CommentLog {
	l.Success = true
	return l
}

// MarkFailure 标记为失败并记录原因
func (l *CommentLog) MarkFailure(msg string) *CommentLog {
	l.Success = false
	l.Error = msg
	return l
}
