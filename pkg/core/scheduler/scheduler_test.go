package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/executor"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/scheduler"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage/memory"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/xhs"
)

// gatePlatform 可阻塞的平台客户端：gate非nil时抓取阻塞直到放行
type gatePlatform struct {
	mu         sync.Mutex
	batch      []xhs.Note
	gate       chan struct{} // 非nil时SearchNotes/Homefeed先在此阻塞
	fetchCalls int
	posted     []string
}

func (p *gatePlatform) fetch() ([]xhs.Note, error) {
	p.mu.Lock()
	p.fetchCalls++
	gate := p.gate
	batch := p.batch
	p.batch = nil // 每个批次只返回一次
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return batch, nil
}

func (p *gatePlatform) SearchNotes(_ context.Context, _, _, _ string) ([]xhs.Note, error) {
	return p.fetch()
}

func (p *gatePlatform) Homefeed(_ context.Context) ([]xhs.Note, error) {
	return p.fetch()
}

func (p *gatePlatform) PostComment(_ context.Context, noteID, _, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posted = append(p.posted, noteID)
	return nil
}

func (p *gatePlatform) NoteTitle(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (p *gatePlatform) postedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.posted)
}

func (p *gatePlatform) fetchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchCalls
}

type noopNotifier struct{}

func (noopNotifier) Publish(_ context.Context) {}

// harness 组装调度器及其依赖
type harness struct {
	tasks    *memory.TaskRepo
	logs     *memory.CommentLogRepo
	platform *gatePlatform
	sched    *scheduler.Scheduler
}

func newHarness(t *testing.T, platform *gatePlatform) *harness {
	t.Helper()
	tasks := memory.NewTaskRepo()
	logs := memory.NewCommentLogRepo()
	exec := executor.NewExecutor(tasks, logs, platform, noopNotifier{})
	sched := scheduler.NewScheduler(tasks, exec, noopNotifier{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		sched.Stop(ctx)
	})
	return &harness{tasks: tasks, logs: logs, platform: platform, sched: sched}
}

func newTask(t *testing.T, repo *memory.TaskRepo, trigger task.TriggerType) *task.Task {
	t.Helper()
	tk := task.New()
	tk.Type = task.TypeSearch
	tk.Keywords = []string{"露营"}
	tk.Comments = []string{"种草了"}
	tk.MaxComments = 2
	tk.TriggerType = trigger
	require.NoError(t, repo.Save(context.Background(), tk))
	return tk
}

func (h *harness) status(t *testing.T, id string) task.Status {
	t.Helper()
	cur, err := h.tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, cur)
	return cur.Status
}

// TestScheduler_StartupSkipsImmediate 启动阶段跳过未开启启动执行的IMMEDIATE任务
func TestScheduler_StartupSkipsImmediate(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}, {ID: "n2"}}}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerImmediate)
	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, true))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, task.StatusIdle, h.status(t, tk.ID))
	assert.Zero(t, platform.postedCount())
}

// TestScheduler_StartupRunsImmediateWithFlag executeOnStartup=true的IMMEDIATE任务在启动阶段执行
func TestScheduler_StartupRunsImmediateWithFlag(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}, {ID: "n2"}}}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerImmediate)
	tk.ExecuteOnStartup = true
	require.NoError(t, h.tasks.Save(context.Background(), tk))
	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, true))

	require.Eventually(t, func() bool {
		return h.status(t, tk.ID) == task.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, platform.postedCount())
}

// TestScheduler_ImmediateRunsToCompletion IMMEDIATE任务非启动阶段立即执行到完成
func TestScheduler_ImmediateRunsToCompletion(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}, {ID: "n2"}, {ID: "n3"}}}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerImmediate)
	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, false))

	require.Eventually(t, func() bool {
		return h.status(t, tk.ID) == task.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, platform.postedCount())
	assert.Empty(t, h.sched.InFlight())
}

// TestScheduler_ScheduledPastTimeRunsNow 执行时间已过的SCHEDULED任务立即执行
func TestScheduler_ScheduledPastTimeRunsNow(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}, {ID: "n2"}}}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerScheduled)
	past := time.Now().Add(-time.Minute)
	tk.ScheduleTime = &past
	require.NoError(t, h.tasks.Save(context.Background(), tk))
	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, false))

	require.Eventually(t, func() bool {
		return h.status(t, tk.ID) == task.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

// TestScheduler_ScheduledFutureWaits 未到执行时间的SCHEDULED任务保持IDLE等待定时器
func TestScheduler_ScheduledFutureWaits(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}}}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerScheduled)
	future := time.Now().Add(time.Hour)
	tk.ScheduleTime = &future
	require.NoError(t, h.tasks.Save(context.Background(), tk))
	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, false))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, task.StatusIdle, h.status(t, tk.ID))
	assert.Zero(t, platform.postedCount())
}

// TestScheduler_ScheduledTimerFires 定时器到期后任务启动执行
func TestScheduler_ScheduledTimerFires(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}, {ID: "n2"}}}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerScheduled)
	soon := time.Now().Add(100 * time.Millisecond)
	tk.ScheduleTime = &soon
	require.NoError(t, h.tasks.Save(context.Background(), tk))
	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, false))

	require.Eventually(t, func() bool {
		return h.status(t, tk.ID) == task.StatusCompleted
	}, 3*time.Second, 20*time.Millisecond)
}

// TestScheduler_IntervalStartsImmediately INTERVAL任务注册后立即执行第一轮并保持RUNNING
func TestScheduler_IntervalStartsImmediately(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}}}
	h := newHarness(t, platform)
	h.sched.Start()

	tk := newTask(t, h.tasks, task.TriggerInterval)
	tk.IntervalMinutes = 60 // 测试期间不会到达第二次触发
	tk.MaxComments = 5
	require.NoError(t, h.tasks.Save(context.Background(), tk))
	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, false))

	require.Eventually(t, func() bool {
		return platform.postedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
	// 额度未满，两次触发之间保持RUNNING
	require.Eventually(t, func() bool {
		return len(h.sched.InFlight()) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, task.StatusRunning, h.status(t, tk.ID))
}

// TestScheduler_IntervalEntryRemovedOnCompletion INTERVAL任务达额度完成后周期条目随之拆除
func TestScheduler_IntervalEntryRemovedOnCompletion(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}, {ID: "n2"}, {ID: "n3"}}}
	h := newHarness(t, platform)
	h.sched.Start()

	tk := newTask(t, h.tasks, task.TriggerInterval)
	tk.IntervalMinutes = 60
	require.NoError(t, h.tasks.Save(context.Background(), tk))
	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, false))

	// MaxComments=2：第一轮就达到额度上限
	require.Eventually(t, func() bool {
		return h.status(t, tk.ID) == task.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	// 终态任务不再保留周期条目，不会继续按间隔触发
	require.Eventually(t, func() bool {
		return len(h.sched.IntervalEntries()) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, h.sched.InFlight())
}

// TestScheduler_PauseWithoutInFlight 无在途执行时暂停由调度器直接落盘
func TestScheduler_PauseWithoutInFlight(t *testing.T) {
	platform := &gatePlatform{}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerInterval)
	tk.IntervalMinutes = 60
	tk.Status = task.StatusRunning
	require.NoError(t, h.tasks.Save(context.Background(), tk))

	require.NoError(t, h.sched.Pause(context.Background(), tk.ID))
	assert.Equal(t, task.StatusPaused, h.status(t, tk.ID))
}

// TestScheduler_PauseInFlight 有在途执行时暂停由执行器观察取消信号后落盘
func TestScheduler_PauseInFlight(t *testing.T) {
	gate := make(chan struct{})
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}}, gate: gate}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerImmediate)
	require.NoError(t, h.sched.StartNow(context.Background(), tk.ID, true))

	// 等执行器进入抓取阻塞
	require.Eventually(t, func() bool {
		return platform.fetchCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, h.sched.Pause(context.Background(), tk.ID))
	close(gate) // 放行抓取，执行器随后观察到取消

	require.Eventually(t, func() bool {
		return h.status(t, tk.ID) == task.StatusPaused
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, platform.postedCount())
	assert.Empty(t, h.sched.InFlight())
}

// TestScheduler_SelfHealResetsQuota RUNNING且额度已满的任务被重置后重新调度
func TestScheduler_SelfHealResetsQuota(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerImmediate)
	tk.Status = task.StatusRunning
	tk.CompletedComments = tk.MaxComments
	require.NoError(t, h.tasks.Save(context.Background(), tk))

	require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, false))

	// 进度归零后重新执行到完成
	require.Eventually(t, func() bool {
		cur, err := h.tasks.GetByID(context.Background(), tk.ID)
		require.NoError(t, err)
		return cur.Status == task.StatusCompleted && cur.CompletedComments == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, platform.postedCount())
}

// TestScheduler_TerminalTasksUntouched 终态任务不被调度
func TestScheduler_TerminalTasksUntouched(t *testing.T) {
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}}}
	h := newHarness(t, platform)

	for _, st := range []task.Status{task.StatusCompleted, task.StatusError} {
		tk := newTask(t, h.tasks, task.TriggerImmediate)
		tk.Status = st
		require.NoError(t, h.tasks.Save(context.Background(), tk))
		require.NoError(t, h.sched.ReconcileTask(context.Background(), tk, false))

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, st, h.status(t, tk.ID))
	}
	assert.Zero(t, platform.postedCount())
}

// TestScheduler_StartNowDeduplicates 在途任务重复启动被忽略（至多一个执行器实例）
func TestScheduler_StartNowDeduplicates(t *testing.T) {
	gate := make(chan struct{})
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}, {ID: "n2"}}, gate: gate}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerImmediate)
	require.NoError(t, h.sched.StartNow(context.Background(), tk.ID, true))
	require.Eventually(t, func() bool {
		return platform.fetchCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// 执行中重复启动：不产生第二个执行器
	require.NoError(t, h.sched.StartNow(context.Background(), tk.ID, true))
	require.NoError(t, h.sched.StartNow(context.Background(), tk.ID, false))
	assert.Len(t, h.sched.InFlight(), 1)

	close(gate)
	require.Eventually(t, func() bool {
		return h.status(t, tk.ID) == task.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, platform.postedCount())
}

// TestScheduler_StopCancelsInFlight 调度器停止时取消全部在途执行
func TestScheduler_StopCancelsInFlight(t *testing.T) {
	gate := make(chan struct{})
	platform := &gatePlatform{batch: []xhs.Note{{ID: "n1"}}, gate: gate}
	h := newHarness(t, platform)

	tk := newTask(t, h.tasks, task.TriggerImmediate)
	require.NoError(t, h.sched.StartNow(context.Background(), tk.ID, true))
	require.Eventually(t, func() bool {
		return platform.fetchCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.sched.Stop(ctx)
		close(stopped)
	}()

	// 先让取消信号发出，再放行阻塞中的抓取
	time.Sleep(50 * time.Millisecond)
	close(gate)
	<-stopped

	// 在途执行被取消，任务落为PAUSED且进度保留
	assert.Equal(t, task.StatusPaused, h.status(t, tk.ID))
	assert.Empty(t, h.sched.InFlight())
}
