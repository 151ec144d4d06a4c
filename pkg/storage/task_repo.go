package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage/dao"
)

// taskRepo TaskRepository的sqlx实现（小写，不导出）
type taskRepo struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewTaskRepo 创建Task存储实例
func NewTaskRepo(db *sqlx.DB, dialect Dialect) (TaskRepository, error) {
	repo := &taskRepo{db: db, dialect: dialect}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化tasks表失败: %w", err)
	}
	return repo, nil
}

// initSchema 初始化表结构（内部方法）
func (r *taskRepo) initSchema() error {
	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS tasks (
		id VARCHAR(64) PRIMARY KEY,
		type VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL,
		keywords %[1]s,
		sort_type VARCHAR(32),
		note_type VARCHAR(32),
		comments %[1]s,
		min_delay INTEGER NOT NULL DEFAULT 0,
		max_delay INTEGER NOT NULL DEFAULT 0,
		max_comments INTEGER NOT NULL,
		completed_comments INTEGER NOT NULL DEFAULT 0,
		trigger_type VARCHAR(16) NOT NULL,
		schedule_time %[2]s,
		interval_minutes INTEGER NOT NULL DEFAULT 0,
		execute_on_startup %[3]s NOT NULL,
		reschedule_after_update %[3]s NOT NULL,
		error_msg %[1]s,
		created_at %[2]s NOT NULL,
		updated_at %[2]s NOT NULL
	)`, r.dialect.TextType(), r.dialect.TimestampType(), r.dialect.BooleanType())

	_, err := r.db.Exec(createTableSQL)
	return err
}

// taskColumns tasks表列名（与TaskDAO的db标签一致）
var taskColumns = []string{
	"id", "type", "status", "keywords", "sort_type", "note_type", "comments",
	"min_delay", "max_delay", "max_comments", "completed_comments",
	"trigger_type", "schedule_time", "interval_minutes",
	"execute_on_startup", "reschedule_after_update", "error_msg",
	"created_at", "updated_at",
}

// Save 保存Task（UPSERT语义）
func (r *taskRepo) Save(ctx context.Context, t *task.Task) error {
	d, err := dao.FromTask(t)
	if err != nil {
		return err
	}

	query := r.dialect.UpsertSQL("tasks", taskColumns, "id", taskColumns[1:])
	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		return fmt.Errorf("保存Task失败: %w", err)
	}
	return nil
}

// GetByID 根据ID查询Task
func (r *taskRepo) GetByID(ctx context.Context, id string) (*task.Task, error) {
	var d dao.TaskDAO
	query := r.db.Rebind("SELECT * FROM tasks WHERE id = ?")
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询Task失败: %w", err)
	}
	return d.ToTask()
}

// List 查询所有Task
func (r *taskRepo) List(ctx context.Context) ([]*task.Task, error) {
	var daos []dao.TaskDAO
	if err := r.db.SelectContext(ctx, &daos, "SELECT * FROM tasks ORDER BY created_at"); err != nil {
		return nil, fmt.Errorf("查询Task列表失败: %w", err)
	}

	tasks := make([]*task.Task, 0, len(daos))
	for i := range daos {
		t, err := daos[i].ToTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Delete 删除Task
func (r *taskRepo) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind("DELETE FROM tasks WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("删除Task失败: %w", err)
	}
	return nil
}
