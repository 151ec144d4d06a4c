package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
)

// validTask 构造一个合法SEARCH任务
func validTask() *task.Task {
	t := task.New()
	t.Type = task.TypeSearch
	t.Keywords = []string{"咖啡", "拿铁"}
	t.Comments = []string{"好喝！"}
	t.MinDelay = 1
	t.MaxDelay = 3
	t.MaxComments = 5
	t.TriggerType = task.TriggerImmediate
	return t
}

// TestTask_Validate 测试任务字段校验
func TestTask_Validate(t *testing.T) {
	t.Run("合法任务通过校验", func(t *testing.T) {
		require.NoError(t, validTask().Validate())
	})

	t.Run("SEARCH任务缺少关键词", func(t *testing.T) {
		tk := validTask()
		tk.Keywords = nil
		assert.Error(t, tk.Validate())
	})

	t.Run("HOMEPAGE任务无需关键词", func(t *testing.T) {
		tk := validTask()
		tk.Type = task.TypeHomepage
		tk.Keywords = nil
		assert.NoError(t, tk.Validate())
	})

	t.Run("缺少候选评论", func(t *testing.T) {
		tk := validTask()
		tk.Comments = nil
		assert.Error(t, tk.Validate())
	})

	t.Run("max_comments必须大于0", func(t *testing.T) {
		tk := validTask()
		tk.MaxComments = 0
		assert.Error(t, tk.Validate())
	})

	t.Run("延迟不能为负数", func(t *testing.T) {
		tk := validTask()
		tk.MinDelay = -1
		assert.Error(t, tk.Validate())
	})

	t.Run("min_delay不能大于max_delay", func(t *testing.T) {
		tk := validTask()
		tk.MinDelay = 10
		tk.MaxDelay = 3
		assert.Error(t, tk.Validate())
	})

	t.Run("SCHEDULED任务必须有schedule_time", func(t *testing.T) {
		tk := validTask()
		tk.TriggerType = task.TriggerScheduled
		assert.Error(t, tk.Validate())

		st := time.Now().Add(time.Hour)
		tk.ScheduleTime = &st
		assert.NoError(t, tk.Validate())
	})

	t.Run("INTERVAL任务必须有正的interval_minutes", func(t *testing.T) {
		tk := validTask()
		tk.TriggerType = task.TriggerInterval
		assert.Error(t, tk.Validate())

		tk.IntervalMinutes = 5
		assert.NoError(t, tk.Validate())
	})

	t.Run("未知触发类型", func(t *testing.T) {
		tk := validTask()
		tk.TriggerType = "CRON"
		assert.Error(t, tk.Validate())
	})
}

// TestCanTransition 测试状态机转换矩阵
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to task.Status
		ok       bool
	}{
		{task.StatusIdle, task.StatusRunning, true},
		{task.StatusIdle, task.StatusPaused, false},
		{task.StatusIdle, task.StatusCompleted, false},
		{task.StatusRunning, task.StatusPaused, true},
		{task.StatusRunning, task.StatusCompleted, true},
		{task.StatusRunning, task.StatusError, true},
		{task.StatusRunning, task.StatusIdle, false},
		{task.StatusPaused, task.StatusRunning, true},
		{task.StatusPaused, task.StatusCompleted, false},
		{task.StatusCompleted, task.StatusRunning, true}, // 显式重启
		{task.StatusCompleted, task.StatusPaused, false},
		{task.StatusError, task.StatusRunning, true}, // 显式重启
		{task.StatusError, task.StatusIdle, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, task.CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

// TestTask_QuotaReached 测试额度判断
func TestTask_QuotaReached(t *testing.T) {
	tk := validTask()
	tk.CompletedComments = 4
	assert.False(t, tk.QuotaReached())

	tk.CompletedComments = 5
	assert.True(t, tk.QuotaReached())
}

// TestTask_ResetProgress 测试进度重置
func TestTask_ResetProgress(t *testing.T) {
	tk := validTask()
	tk.CompletedComments = 3
	tk.Error = "something failed"

	tk.ResetProgress()
	assert.Equal(t, 0, tk.CompletedComments)
	assert.Empty(t, tk.Error)
}
