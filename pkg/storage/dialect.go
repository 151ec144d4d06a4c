// Package storage 定义任务与评论日志的持久化接口及通用实现
package storage

// Dialect SQL方言接口（对外导出）
// 封装不同数据库的SQL语法差异
type Dialect interface {
	// Name 返回方言名称（如 "sqlite", "mysql", "postgres"）
	Name() string

	// DriverName 返回database/sql驱动名称
	DriverName() string

	// UpsertSQL 返回INSERT或UPDATE的SQL语句（命名参数形式）
	// tableName: 表名
	// columns: 列名列表
	// conflictColumn: 冲突判断列（通常是主键）
	// updateColumns: 需要更新的列（不含主键）
	UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string

	// ConfigureDB 返回建连后需要执行的配置语句（如SQLite的PRAGMA）
	ConfigureDB() []string

	// BooleanType 返回布尔类型
	// SQLite: INTEGER, MySQL: TINYINT(1), PostgreSQL: BOOLEAN
	BooleanType() string

	// TimestampType 返回时间戳类型
	// SQLite/MySQL: DATETIME, PostgreSQL: TIMESTAMP
	TimestampType() string

	// TextType 返回文本类型
	TextType() string
}
