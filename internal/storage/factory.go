// Package storage 提供数据库工厂（内部使用）
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage/mysql"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage/postgres"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage/sqlite"
)

// dialectFor 根据数据库类型选择方言（内部方法）
func dialectFor(dbType string) (storage.Dialect, error) {
	switch dbType {
	case "sqlite", "sqlite3":
		return sqlite.NewDialect(), nil
	case "mysql":
		return mysql.NewDialect(), nil
	case "postgres", "postgresql":
		return postgres.NewDialect(), nil
	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s", dbType)
	}
}

// Open 打开数据库并初始化全部Repository
// dbType: 数据库类型（sqlite/mysql/postgres）
// dsn: 数据库连接字符串
func Open(dbType, dsn string) (*storage.Store, error) {
	dialect, err := dialectFor(dbType)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	// 执行方言级连接配置（如SQLite的PRAGMA）
	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("配置数据库失败: %w", err)
		}
	}

	return NewStore(db, dialect)
}

// NewStore 基于已有连接构建Store（测试中直接传入:memory:连接）
func NewStore(db *sqlx.DB, dialect storage.Dialect) (*storage.Store, error) {
	tasks, err := storage.NewTaskRepo(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	logs, err := storage.NewCommentLogRepo(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	templates, err := storage.NewTemplateRepo(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	settings, err := storage.NewSettingRepo(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}

	return storage.NewStoreWith(tasks, logs, templates, settings, db.Close), nil
}
