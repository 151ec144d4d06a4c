// Package scheduler 根据触发类型决定每个任务何时启动/停止执行器
// 持有全部取消句柄与定时器注册表：启动时分配、停止时释放，转换后不留残余
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/executor"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// Scheduler 任务调度器（对外导出）
// 保证同一任务同时最多只有一个执行器实例（取消句柄注册表即在途标记）
type Scheduler struct {
	tasks    storage.TaskRepository
	exec     *executor.Executor
	notifier executor.Notifier

	cron    *cron.Cron
	entries map[string]cron.EntryID       // taskID -> 周期任务条目
	timers  map[string]*time.Timer        // taskID -> 一次性定时器
	cancels map[string]context.CancelFunc // taskID -> 在途执行的取消句柄

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler 创建调度器
func NewScheduler(tasks storage.TaskRepository, exec *executor.Executor, notifier executor.Notifier) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:    tasks,
		exec:     exec,
		notifier: notifier,
		cron:     cron.New(),
		entries:  make(map[string]cron.EntryID),
		timers:   make(map[string]*time.Timer),
		cancels:  make(map[string]context.CancelFunc),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start 启动调度器的周期任务时钟
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("✅ [调度器] 已启动")
}

// Stop 停止调度器：取消所有在途执行并等待退出
// 在途任务由执行器观察取消信号后落为PAUSED
func (s *Scheduler) Stop(ctx context.Context) {
	s.cron.Stop()

	s.mu.Lock()
	for id, cancelFn := range s.cancels {
		cancelFn()
		delete(s.cancels, id)
	}
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Println("✅ [调度器] 所有执行器已退出")
	case <-ctx.Done():
		log.Println("⚠️ [调度器] 等待执行器退出超时")
	}
}

// Reconcile 对全部任务执行一次调度决策（幂等，可重复调用）
// isStartup: 进程启动阶段为true，此时不执行executeOnStartup=false的IMMEDIATE任务
func (s *Scheduler) Reconcile(ctx context.Context, tasks []*task.Task, isStartup bool) {
	for _, t := range tasks {
		if err := s.ReconcileTask(ctx, t, isStartup); err != nil {
			log.Printf("⚠️ [调度器] 任务调度失败: ID=%s, Error=%v", t.ID, err)
		}
	}
}

// ReconcileTask 对单个任务执行调度决策
func (s *Scheduler) ReconcileTask(ctx context.Context, t *task.Task, isStartup bool) error {
	// 规则1：启动阶段跳过未开启"启动时执行"的IMMEDIATE任务
	if t.TriggerType == task.TriggerImmediate && isStartup && !t.ExecuteOnStartup {
		return nil
	}

	// 规则2：非RUNNING状态不应保留周期任务
	s.mu.Lock()
	if entryID, ok := s.entries[t.ID]; ok && t.Status != task.StatusRunning {
		s.cron.Remove(entryID)
		delete(s.entries, t.ID)
	}
	s.mu.Unlock()

	switch {
	// 规则3：PAUSED任务取消一切在途执行与定时器，不重启
	case t.Status == task.StatusPaused:
		s.teardown(t.ID)
		return nil

	// 规则4：终态任务不做任何动作（只能显式重启）
	case t.IsTerminal():
		return nil

	// 规则5：RUNNING但额度已满——自愈为IDLE后按规则6重新调度
	case t.Status == task.StatusRunning && t.QuotaReached():
		cur, err := s.tasks.GetByID(ctx, t.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			return nil
		}
		cur.ResetProgress()
		cur.Status = task.StatusIdle
		cur.UpdatedAt = time.Now()
		if err := s.tasks.Save(ctx, cur); err != nil {
			return err
		}
		s.notifier.Publish(ctx)
		log.Printf("ℹ️ [调度器] 任务自愈重置: ID=%s", t.ID)
		return s.schedule(ctx, cur)

	// 规则6：IDLE任务按触发类型调度
	case t.Status == task.StatusIdle:
		return s.schedule(ctx, t)
	}
	return nil
}

// schedule 为IDLE任务按触发类型安排执行（内部方法）
func (s *Scheduler) schedule(ctx context.Context, t *task.Task) error {
	switch t.TriggerType {
	case task.TriggerImmediate:
		return s.StartNow(ctx, t.ID, true)

	case task.TriggerScheduled:
		if t.ScheduleTime == nil {
			return fmt.Errorf("SCHEDULED任务缺少schedule_time: ID=%s", t.ID)
		}
		if !t.ScheduleTime.After(time.Now()) {
			return s.StartNow(ctx, t.ID, true)
		}
		s.registerTimer(t.ID, time.Until(*t.ScheduleTime))
		return nil

	case task.TriggerInterval:
		// 先落RUNNING：周期任务在两次触发之间保持RUNNING状态
		cur, err := s.tasks.GetByID(ctx, t.ID)
		if err != nil {
			return err
		}
		if cur == nil || cur.Status != task.StatusIdle {
			return nil
		}
		cur.Status = task.StatusRunning
		cur.ResetProgress()
		cur.UpdatedAt = time.Now()
		if err := s.tasks.Save(ctx, cur); err != nil {
			return err
		}
		s.notifier.Publish(ctx)
		if err := s.registerInterval(t.ID, cur.IntervalMinutes); err != nil {
			return err
		}
		// 注册后立即执行第一轮
		s.spawn(t.ID)
		return nil

	default:
		return fmt.Errorf("未知触发类型: %s", t.TriggerType)
	}
}

// StartNow 立即启动任务执行
// reset: 是否重置进度（IMMEDIATE/SCHEDULED启动与显式重启为true，PAUSED恢复为false）
func (s *Scheduler) StartNow(ctx context.Context, taskID string, reset bool) error {
	s.mu.Lock()
	if _, inFlight := s.cancels[taskID]; inFlight {
		s.mu.Unlock()
		log.Printf("ℹ️ [调度器] 任务已在执行中，跳过重复启动: ID=%s", taskID)
		return nil
	}
	s.mu.Unlock()

	cur, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("任务不存在: %s", taskID)
	}

	cur.Status = task.StatusRunning
	if reset {
		cur.ResetProgress()
	}
	cur.UpdatedAt = time.Now()
	if err := s.tasks.Save(ctx, cur); err != nil {
		return err
	}
	s.notifier.Publish(ctx)

	s.spawn(taskID)
	return nil
}

// spawn 分配取消句柄并异步调用执行器（内部方法）
// 句柄存在即表示在途，实现同任务至多一个执行器实例
func (s *Scheduler) spawn(taskID string) {
	s.mu.Lock()
	if _, inFlight := s.cancels[taskID]; inFlight {
		s.mu.Unlock()
		return
	}
	runCtx, cancelFn := context.WithCancel(s.ctx)
	s.cancels[taskID] = cancelFn
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(taskID)

		cur, err := s.tasks.GetByID(runCtx, taskID)
		if err != nil || cur == nil {
			return
		}
		s.exec.Run(runCtx, cur)
		// 执行器把任务落为终态后周期条目与定时器随之拆除
		s.cleanupAfterRun(taskID)
	}()
}

// cleanupAfterRun 执行器退出后检查任务状态，非RUNNING则拆除周期条目与定时器（内部方法）
// 周期任务达到额度上限落COMPLETED后，对应的cron条目不应继续触发
func (s *Scheduler) cleanupAfterRun(taskID string) {
	cur, err := s.tasks.GetByID(context.Background(), taskID)
	if err != nil {
		return
	}
	if cur != nil && cur.Status == task.StatusRunning {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[taskID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, taskID)
	}
	if timer, ok := s.timers[taskID]; ok {
		timer.Stop()
		delete(s.timers, taskID)
	}
}

// release 释放取消句柄（执行器退出后调用，内部方法）
func (s *Scheduler) release(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancelFn, ok := s.cancels[taskID]; ok {
		cancelFn()
		delete(s.cancels, taskID)
	}
}

// registerInterval 注册周期触发条目（内部方法）
func (s *Scheduler) registerInterval(taskID string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[taskID]; ok {
		return nil
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", minutes), func() {
		log.Printf("🕐 [调度器] 周期触发: ID=%s", taskID)
		// 每次触发时由执行器自行判断剩余额度
		s.spawn(taskID)
	})
	if err != nil {
		return fmt.Errorf("注册周期任务失败: %w", err)
	}
	s.entries[taskID] = entryID
	log.Printf("✅ [调度器] 已注册周期任务: ID=%s, 间隔=%d分钟", taskID, minutes)
	return nil
}

// registerTimer 注册一次性定时器（内部方法）
func (s *Scheduler) registerTimer(taskID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 重复注册时替换旧定时器
	if old, ok := s.timers[taskID]; ok {
		old.Stop()
	}
	s.timers[taskID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, taskID)
		s.mu.Unlock()

		log.Printf("🕐 [调度器] 定时触发: ID=%s", taskID)
		if err := s.StartNow(context.Background(), taskID, true); err != nil {
			log.Printf("⚠️ [调度器] 定时启动失败: ID=%s, Error=%v", taskID, err)
		}
	})
	log.Printf("✅ [调度器] 已注册定时任务: ID=%s, %s后触发", taskID, delay.Round(time.Second))
}

// Pause 暂停任务：取消在途执行并拆除全部定时器
// 存在在途执行时由执行器观察取消信号后写PAUSED；否则由调度器直接落盘
func (s *Scheduler) Pause(ctx context.Context, taskID string) error {
	hadInFlight := s.hasInFlight(taskID)
	s.teardown(taskID)

	if hadInFlight {
		// 执行器负责写PAUSED（保证"暂停后最多一条在途动作"的语义）
		return nil
	}

	cur, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if cur == nil || cur.Status != task.StatusRunning {
		return nil
	}
	cur.Status = task.StatusPaused
	cur.UpdatedAt = time.Now()
	if err := s.tasks.Save(ctx, cur); err != nil {
		return err
	}
	s.notifier.Publish(ctx)
	return nil
}

// Cancel 取消任务的一切调度痕迹（删除任务前调用）
func (s *Scheduler) Cancel(taskID string) {
	s.teardown(taskID)
}

// teardown 原子拆除取消句柄、周期条目与定时器（内部方法）
func (s *Scheduler) teardown(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancelFn, ok := s.cancels[taskID]; ok {
		cancelFn()
		delete(s.cancels, taskID)
	}
	if entryID, ok := s.entries[taskID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, taskID)
	}
	if timer, ok := s.timers[taskID]; ok {
		timer.Stop()
		delete(s.timers, taskID)
	}
}

// hasInFlight 判断任务是否有在途执行（内部方法）
func (s *Scheduler) hasInFlight(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cancels[taskID]
	return ok
}

// IntervalEntries 返回当前注册了周期条目的任务ID列表（测试与诊断用）
func (s *Scheduler) IntervalEntries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// InFlight 返回当前在途执行的任务ID列表（测试与诊断用）
func (s *Scheduler) InFlight() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.cancels))
	for id := range s.cancels {
		ids = append(ids, id)
	}
	return ids
}
