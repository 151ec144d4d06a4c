package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage/dao"
)

// commentLogRepo CommentLogRepository的sqlx实现（小写，不导出）
type commentLogRepo struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewCommentLogRepo 创建评论日志存储实例
func NewCommentLogRepo(db *sqlx.DB, dialect Dialect) (CommentLogRepository, error) {
	repo := &commentLogRepo{db: db, dialect: dialect}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化comment_logs表失败: %w", err)
	}
	return repo, nil
}

// initSchema 初始化表结构（内部方法）
func (r *commentLogRepo) initSchema() error {
	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS comment_logs (
		id VARCHAR(64) PRIMARY KEY,
		task_id VARCHAR(64) NOT NULL,
		note_id VARCHAR(64) NOT NULL,
		note_title %[1]s,
		comment %[1]s NOT NULL,
		timestamp %[2]s NOT NULL,
		success %[3]s NOT NULL,
		error_msg %[1]s
	)`, r.dialect.TextType(), r.dialect.TimestampType(), r.dialect.BooleanType())

	if _, err := r.db.Exec(createTableSQL); err != nil {
		return err
	}
	_, err := r.db.Exec("CREATE INDEX IF NOT EXISTS idx_comment_logs_task_id ON comment_logs(task_id)")
	return err
}

// Append 追加一条评论日志（只插入，永不更新）
func (r *commentLogRepo) Append(ctx context.Context, l *task.CommentLog) error {
	query := `
	INSERT INTO comment_logs (id, task_id, note_id, note_title, comment, timestamp, success, error_msg)
	VALUES (:id, :task_id, :note_id, :note_title, :comment, :timestamp, :success, :error_msg)
	`
	if _, err := r.db.NamedExecContext(ctx, query, dao.FromCommentLog(l)); err != nil {
		return fmt.Errorf("写入评论日志失败: %w", err)
	}
	return nil
}

// ListByTask 查询指定任务的全部评论日志
func (r *commentLogRepo) ListByTask(ctx context.Context, taskID string) ([]*task.CommentLog, error) {
	var daos []dao.CommentLogDAO
	query := r.db.Rebind("SELECT * FROM comment_logs WHERE task_id = ? ORDER BY timestamp")
	if err := r.db.SelectContext(ctx, &daos, query, taskID); err != nil {
		return nil, fmt.Errorf("查询评论日志失败: %w", err)
	}

	logs := make([]*task.CommentLog, 0, len(daos))
	for i := range daos {
		logs = append(logs, daos[i].ToCommentLog())
	}
	return logs, nil
}

// NoteIDsByTask 查询指定任务已操作过的noteId集合（含失败记录，跨重启去重依据）
func (r *commentLogRepo) NoteIDsByTask(ctx context.Context, taskID string) ([]string, error) {
	var ids []string
	query := r.db.Rebind("SELECT DISTINCT note_id FROM comment_logs WHERE task_id = ?")
	if err := r.db.SelectContext(ctx, &ids, query, taskID); err != nil {
		return nil, fmt.Errorf("查询已评论noteId失败: %w", err)
	}
	return ids, nil
}
