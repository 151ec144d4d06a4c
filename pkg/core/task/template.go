package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Template 评论内容模板（dashboard侧复用的候选评论集合）
type Template struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewTemplate 创建模板
func NewTemplate(name, content string) *Template {
	now := time.Now()
	return &Template{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate 校验模板字段
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("模板名称不能为空")
	}
	if t.Content == "" {
		return fmt.Errorf("模板内容不能为空")
	}
	return nil
}
