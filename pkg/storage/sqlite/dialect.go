// Package sqlite 提供存储层的SQLite方言实现
package sqlite

import (
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// Dialect SQLite方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建SQLite方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "sqlite"
}

// DriverName 返回驱动名称
func (d *Dialect) DriverName() string {
	return "sqlite3"
}

// UpsertSQL 返回SQLite的UPSERT语句（使用ON CONFLICT DO UPDATE）
func (d *Dialect) UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string {
	namedPlaceholders := make([]string, len(columns))
	for i, col := range columns {
		namedPlaceholders[i] = ":" + col
	}

	updateParts := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		updateParts[i] = fmt.Sprintf("%s = excluded.%s", col, col)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(namedPlaceholders, ", "),
		conflictColumn,
		strings.Join(updateParts, ", "),
	)
}

// ConfigureDB 返回SQLite连接配置（WAL模式+忙等待超时）
func (d *Dialect) ConfigureDB() []string {
	return []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=30000;",
		"PRAGMA wal_autocheckpoint=1000;",
		"PRAGMA synchronous=NORMAL;",
	}
}

// BooleanType 返回布尔类型
func (d *Dialect) BooleanType() string {
	return "INTEGER"
}

// TimestampType 返回时间戳类型
func (d *Dialect) TimestampType() string {
	return "DATETIME"
}

// TextType 返回文本类型
func (d *Dialect) TextType() string {
	return "TEXT"
}

var _ storage.Dialect = (*Dialect)(nil)
