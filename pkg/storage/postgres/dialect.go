// Package postgres 提供存储层的PostgreSQL方言实现
package postgres

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// Dialect PostgreSQL方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建PostgreSQL方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "postgres"
}

// DriverName 返回驱动名称
func (d *Dialect) DriverName() string {
	return "postgres"
}

// UpsertSQL 返回PostgreSQL的UPSERT语句（使用ON CONFLICT DO UPDATE）
func (d *Dialect) UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string {
	namedPlaceholders := make([]string, len(columns))
	for i, col := range columns {
		namedPlaceholders[i] = ":" + col
	}

	updateParts := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		updateParts[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(namedPlaceholders, ", "),
		conflictColumn,
		strings.Join(updateParts, ", "),
	)
}

// ConfigureDB PostgreSQL无需额外配置语句
func (d *Dialect) ConfigureDB() []string {
	return nil
}

// BooleanType 返回布尔类型
func (d *Dialect) BooleanType() string {
	return "BOOLEAN"
}

// TimestampType 返回时间戳类型
func (d *Dialect) TimestampType() string {
	return "TIMESTAMP"
}

// TextType 返回文本类型
func (d *Dialect) TextType() string {
	return "TEXT"
}

var _ storage.Dialect = (*Dialect)(nil)
