// Package engine 组装存储、调度器、执行器与广播器，对API层提供统一入口
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/broadcast"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/executor"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/scheduler"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// Engine 任务引擎（对外导出）
type Engine struct {
	store       *storage.Store
	scheduler   *scheduler.Scheduler
	broadcaster *broadcast.Broadcaster
}

// NewEngine 创建引擎
func NewEngine(store *storage.Store, platform executor.Platform) *Engine {
	broadcaster := broadcast.NewBroadcaster(store.Tasks)
	exec := executor.NewExecutor(store.Tasks, store.CommentLogs, platform, broadcaster)
	sched := scheduler.NewScheduler(store.Tasks, exec, broadcaster)

	return &Engine{
		store:       store,
		scheduler:   sched,
		broadcaster: broadcaster,
	}
}

// Start 启动引擎：规整遗留状态后执行启动调度
func (e *Engine) Start(ctx context.Context) error {
	tasks, err := e.store.Tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("加载任务列表失败: %w", err)
	}

	// 进程上次退出时可能留下RUNNING残留，统一规整为PAUSED
	for _, t := range tasks {
		if t.Status == task.StatusRunning {
			t.Status = task.StatusPaused
			t.UpdatedAt = time.Now()
			if err := e.store.Tasks.Save(ctx, t); err != nil {
				return fmt.Errorf("规整遗留任务状态失败: %w", err)
			}
			log.Printf("ℹ️ [引擎] 规整遗留RUNNING任务: ID=%s", t.ID)
		}
	}

	e.scheduler.Start()

	// 启动时执行executeOnStartup的任务：先恢复为IDLE再交给调度器
	for _, t := range tasks {
		if t.Status == task.StatusPaused && t.ExecuteOnStartup {
			t.Status = task.StatusIdle
			t.ResetProgress()
			t.UpdatedAt = time.Now()
			if err := e.store.Tasks.Save(ctx, t); err != nil {
				return err
			}
		}
	}

	tasks, err = e.store.Tasks.List(ctx)
	if err != nil {
		return err
	}
	e.scheduler.Reconcile(ctx, tasks, true)

	log.Printf("🚀 [引擎] 启动完成，共加载%d个任务", len(tasks))
	return nil
}

// Stop 停止引擎：关停调度器并断开广播订阅
func (e *Engine) Stop(ctx context.Context) {
	e.scheduler.Stop(ctx)
	if err := e.broadcaster.Close(); err != nil {
		log.Printf("⚠️ [引擎] 关闭广播器失败: %v", err)
	}
	log.Println("🛑 [引擎] 已停止")
}

// Broadcaster 返回状态广播器（SSE/WebSocket处理器订阅用）
func (e *Engine) Broadcaster() *broadcast.Broadcaster {
	return e.broadcaster
}

// Store 返回存储集合（模板/设置处理器使用）
func (e *Engine) Store() *storage.Store {
	return e.store
}

// CreateTask 创建任务并立即调度
func (e *Engine) CreateTask(ctx context.Context, t *task.Task) (*task.Task, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := e.store.Tasks.Save(ctx, t); err != nil {
		return nil, err
	}
	e.broadcaster.Publish(ctx)

	if err := e.scheduler.ReconcileTask(ctx, t, false); err != nil {
		log.Printf("⚠️ [引擎] 新建任务调度失败: ID=%s, Error=%v", t.ID, err)
	}

	created, err := e.store.Tasks.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListTasks 查询全部任务
func (e *Engine) ListTasks(ctx context.Context) ([]*task.Task, error) {
	return e.store.Tasks.List(ctx)
}

// GetTask 查询单个任务
func (e *Engine) GetTask(ctx context.Context, id string) (*task.Task, error) {
	return e.store.Tasks.GetByID(ctx, id)
}

// UpdateTask 更新任务（merged为合并后的完整任务）
// rescheduleAfterUpdate开启时重新调度该任务
func (e *Engine) UpdateTask(ctx context.Context, merged *task.Task) (*task.Task, error) {
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	// 已完成数不允许超过上限：缩小上限前需先重启任务清零进度
	if merged.MaxComments < merged.CompletedComments {
		return nil, fmt.Errorf("max_comments不能小于已完成评论数: %d < %d", merged.MaxComments, merged.CompletedComments)
	}
	merged.UpdatedAt = time.Now()
	if err := e.store.Tasks.Save(ctx, merged); err != nil {
		return nil, err
	}
	e.broadcaster.Publish(ctx)

	if merged.RescheduleAfterUpdate {
		// 拆除旧调度痕迹后按新配置重新调度
		if err := e.scheduler.Pause(ctx, merged.ID); err != nil {
			return nil, err
		}
		cur, err := e.store.Tasks.GetByID(ctx, merged.ID)
		if err != nil {
			return nil, err
		}
		if cur != nil && cur.Status == task.StatusPaused {
			cur.Status = task.StatusIdle
			cur.UpdatedAt = time.Now()
			if err := e.store.Tasks.Save(ctx, cur); err != nil {
				return nil, err
			}
		}
		if cur != nil {
			if err := e.scheduler.ReconcileTask(ctx, cur, false); err != nil {
				log.Printf("⚠️ [引擎] 更新任务重调度失败: ID=%s, Error=%v", merged.ID, err)
			}
		}
	}

	return e.store.Tasks.GetByID(ctx, merged.ID)
}

// ChangeStatus 用户驱动的状态变更（暂停/恢复/重启）
func (e *Engine) ChangeStatus(ctx context.Context, id string, target task.Status) (*task.Task, error) {
	cur, err := e.store.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, nil
	}

	if !task.CanTransition(cur.Status, target) {
		return nil, fmt.Errorf("非法状态转换: %s -> %s", cur.Status, target)
	}

	switch target {
	case task.StatusRunning:
		// 终态重启需重置进度，PAUSED恢复保留进度
		reset := cur.IsTerminal()
		if err := e.scheduler.StartNow(ctx, id, reset); err != nil {
			return nil, err
		}
	case task.StatusPaused:
		if err := e.scheduler.Pause(ctx, id); err != nil {
			return nil, err
		}
	default:
		// COMPLETED/ERROR由引擎内部写入，不接受用户直接设置
		return nil, fmt.Errorf("不支持用户设置状态: %s", target)
	}

	return e.store.Tasks.GetByID(ctx, id)
}

// DeleteTask 删除任务（先取消在途执行与全部定时器）
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	e.scheduler.Cancel(id)
	if err := e.store.Tasks.Delete(ctx, id); err != nil {
		return err
	}
	e.broadcaster.Publish(ctx)
	return nil
}

// ListTaskLogs 查询任务的评论日志
func (e *Engine) ListTaskLogs(ctx context.Context, taskID string) ([]*task.CommentLog, error) {
	return e.store.CommentLogs.ListByTask(ctx, taskID)
}

// Reconcile 手工触发一次全量调度（诊断用）
func (e *Engine) Reconcile(ctx context.Context) error {
	tasks, err := e.store.Tasks.List(ctx)
	if err != nil {
		return err
	}
	e.scheduler.Reconcile(ctx, tasks, false)
	return nil
}
