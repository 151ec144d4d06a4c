package broadcast_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/broadcast"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage/memory"
)

func saveTask(t *testing.T, repo *memory.TaskRepo, name string) *task.Task {
	t.Helper()
	tk := task.New()
	tk.Type = task.TypeSearch
	tk.Keywords = []string{name}
	tk.Comments = []string{"不错"}
	tk.MaxComments = 1
	tk.TriggerType = task.TriggerImmediate
	require.NoError(t, repo.Save(context.Background(), tk))
	return tk
}

func recvSnapshot(t *testing.T, ch <-chan []byte) []*task.Task {
	t.Helper()
	select {
	case payload, ok := <-ch:
		require.True(t, ok, "订阅通道被提前关闭")
		var tasks []*task.Task
		require.NoError(t, json.Unmarshal(payload, &tasks))
		return tasks
	case <-time.After(2 * time.Second):
		t.Fatal("等待快照超时")
		return nil
	}
}

// TestBroadcaster_InitialSnapshot 订阅建立后立即收到当前全量快照
func TestBroadcaster_InitialSnapshot(t *testing.T) {
	repo := memory.NewTaskRepo()
	saveTask(t, repo, "咖啡")
	saveTask(t, repo, "露营")

	b := broadcast.NewBroadcaster(repo)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := b.Subscribe(ctx)
	require.NoError(t, err)

	tasks := recvSnapshot(t, ch)
	assert.Len(t, tasks, 2)
}

// TestBroadcaster_PublishReachesSubscribers 发布后所有订阅方收到最新全量列表
func TestBroadcaster_PublishReachesSubscribers(t *testing.T) {
	repo := memory.NewTaskRepo()
	b := broadcast.NewBroadcaster(repo)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1, err := b.Subscribe(ctx)
	require.NoError(t, err)
	ch2, err := b.Subscribe(ctx)
	require.NoError(t, err)

	// 初始快照为空列表
	assert.Empty(t, recvSnapshot(t, ch1))
	assert.Empty(t, recvSnapshot(t, ch2))

	tk := saveTask(t, repo, "健身")
	b.Publish(ctx)

	got1 := recvSnapshot(t, ch1)
	got2 := recvSnapshot(t, ch2)
	require.Len(t, got1, 1)
	require.Len(t, got2, 1)
	assert.Equal(t, tk.ID, got1[0].ID)
	assert.Equal(t, tk.ID, got2[0].ID)
}

// TestBroadcaster_ContextCancelClosesChannel ctx取消后订阅通道关闭
func TestBroadcaster_ContextCancelClosesChannel(t *testing.T) {
	repo := memory.NewTaskRepo()
	b := broadcast.NewBroadcaster(repo)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx)
	require.NoError(t, err)
	recvSnapshot(t, ch)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("ctx取消后通道未关闭")
	}
}
