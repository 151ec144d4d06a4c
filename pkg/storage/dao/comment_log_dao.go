package dao

import (
	"database/sql"
	"time"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
)

// CommentLogDAO comment_logs表的数据访问对象（内部使用）
type CommentLogDAO struct {
	ID        string         `db:"id"`
	TaskID    string         `db:"task_id"`
	NoteID    string         `db:"note_id"`
	NoteTitle string         `db:"note_title"`
	Comment   string         `db:"comment"`
	Timestamp time.Time      `db:"timestamp"`
	Success   bool           `db:"success"`
	ErrorMsg  sql.NullString `db:"error_msg"`
}

// FromCommentLog 将领域对象转换为DAO
func FromCommentLog(l *task.CommentLog) *CommentLogDAO {
	d := &CommentLogDAO{
		ID:        l.ID,
		TaskID:    l.TaskID,
		NoteID:    l.NoteID,
		NoteTitle: l.NoteTitle,
		Comment:   l.Comment,
		Timestamp: l.Timestamp,
		Success:   l.Success,
	}
	if l.Error != "" {
		d.ErrorMsg.Valid = true
		d.ErrorMsg.String = l.Error
	}
	return d
}

// ToCommentLog 将DAO转换为领域对象
func (d *CommentLogDAO) ToCommentLog() *task.CommentLog {
	l := &task.CommentLog{
		ID:        d.ID,
		TaskID:    d.TaskID,
		NoteID:    d.NoteID,
		NoteTitle: d.NoteTitle,
		Comment:   d.Comment,
		Timestamp: d.Timestamp,
		Success:   d.Success,
	}
	if d.ErrorMsg.Valid {
		l.Error = d.ErrorMsg.String
	}
	return l
}
