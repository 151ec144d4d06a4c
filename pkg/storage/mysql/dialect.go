// Package mysql 提供存储层的MySQL方言实现
package mysql

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// Dialect MySQL方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建MySQL方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "mysql"
}

// DriverName 返回驱动名称
func (d *Dialect) DriverName() string {
	return "mysql"
}

// UpsertSQL 返回MySQL的UPSERT语句（使用ON DUPLICATE KEY UPDATE）
func (d *Dialect) UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string {
	namedPlaceholders := make([]string, len(columns))
	for i, col := range columns {
		namedPlaceholders[i] = ":" + col
	}

	updateParts := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		updateParts[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(namedPlaceholders, ", "),
		strings.Join(updateParts, ", "),
	)
}

// ConfigureDB MySQL无需额外配置语句
func (d *Dialect) ConfigureDB() []string {
	return nil
}

// BooleanType 返回布尔类型
func (d *Dialect) BooleanType() string {
	return "TINYINT(1)"
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
