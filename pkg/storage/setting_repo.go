package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// settingRepo SettingRepository的sqlx实现（小写，不导出）
type settingRepo struct {
	db      *sqlx.DB
	dialect Dialect
}

// settingRow settings表行结构（内部使用）
// 列名避开key/value等各数据库保留字
type settingRow struct {
	Key   string `db:"setting_key"`
	Value string `db:"setting_value"`
}

// NewSettingRepo 创建设置存储实例
func NewSettingRepo(db *sqlx.DB, dialect Dialect) (SettingRepository, error) {
	repo := &settingRepo{db: db, dialect: dialect}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化settings表失败: %w", err)
	}
	return repo, nil
}

func (r *settingRepo) initSchema() error {
	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS settings (
		setting_key VARCHAR(64) PRIMARY KEY,
		setting_value %s NOT NULL
	)`, r.dialect.TextType())

	_, err := r.db.Exec(createTableSQL)
	return err
}

// Get 查询单个设置项，不存在时返回空字符串
func (r *settingRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	query := r.db.Rebind("SELECT setting_value FROM settings WHERE setting_key = ?")
	if err := r.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("查询设置失败: %w", err)
	}
	return value, nil
}

// Set 写入设置项（UPSERT语义）
func (r *settingRepo) Set(ctx context.Context, key, value string) error {
	query := r.dialect.UpsertSQL("settings", []string{"setting_key", "setting_value"}, "setting_key", []string{"setting_value"})
	if _, err := r.db.NamedExecContext(ctx, query, settingRow{Key: key, Value: value}); err != nil {
		return fmt.Errorf("写入设置失败: %w", err)
	}
	return nil
}

// All 查询全部设置项
func (r *settingRepo) All(ctx context.Context) (map[string]string, error) {
	var rows []settingRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT setting_key, setting_value FROM settings"); err != nil {
		return nil, fmt.Errorf("查询设置列表失败: %w", err)
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}
