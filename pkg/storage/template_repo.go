package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
)

// templateRepo TemplateRepository的sqlx实现（小写，不导出）
type templateRepo struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewTemplateRepo 创建评论模板存储实例
func NewTemplateRepo(db *sqlx.DB, dialect Dialect) (TemplateRepository, error) {
	repo := &templateRepo{db: db, dialect: dialect}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化templates表失败: %w", err)
	}
	return repo, nil
}

func (r *templateRepo) initSchema() error {
	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS templates (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		content %[1]s NOT NULL,
		created_at %[2]s NOT NULL,
		updated_at %[2]s NOT NULL
	)`, r.dialect.TextType(), r.dialect.TimestampType())

	_, err := r.db.Exec(createTableSQL)
	return err
}

// Save 保存模板（UPSERT语义）
func (r *templateRepo) Save(ctx context.Context, t *task.Template) error {
	columns := []string{"id", "name", "content", "created_at", "updated_at"}
	query := r.dialect.UpsertSQL("templates", columns, "id", columns[1:])
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("保存模板失败: %w", err)
	}
	return nil
}

// GetByID 根据ID查询模板
func (r *templateRepo) GetByID(ctx context.Context, id string) (*task.Template, error) {
	var t task.Template
	query := r.db.Rebind("SELECT * FROM templates WHERE id = ?")
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询模板失败: %w", err)
	}
	return &t, nil
}

// List 查询所有模板
func (r *templateRepo) List(ctx context.Context) ([]*task.Template, error) {
	var templates []*task.Template
	if err := r.db.SelectContext(ctx, &templates, "SELECT * FROM templates ORDER BY created_at"); err != nil {
		return nil, fmt.Errorf("查询模板列表失败: %w", err)
	}
	return templates, nil
}

// Delete 删除模板
func (r *templateRepo) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind("DELETE FROM templates WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("删除模板失败: %w", err)
	}
	return nil
}
