// Package executor 实现单个任务的抓取-去重-延迟-评论执行循环
package executor

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/xhs"
)

// Platform 平台客户端接口（执行器消费，xhs.Client实现）
type Platform interface {
	// SearchNotes 按关键词搜索候选笔记
	SearchNotes(ctx context.Context, keyword, sortType, noteType string) ([]xhs.Note, error)

	// Homefeed 拉取首页推荐流候选笔记
	Homefeed(ctx context.Context) ([]xhs.Note, error)

	// PostComment 发表评论
	PostComment(ctx context.Context, noteID, xsecToken, content string) error

	// NoteTitle 获取笔记标题（搜索/推荐流条目缺少标题时的兜底）
	NoteTitle(ctx context.Context, noteID string) (string, error)
}

// Notifier 状态变更通知接口（广播器实现）
type Notifier interface {
	Publish(ctx context.Context)
}

// Executor 任务执行器（对外导出）
// Run永远正常返回：循环外的异常被捕获并转换为任务ERROR状态
type Executor struct {
	tasks    storage.TaskRepository
	logs     storage.CommentLogRepository
	platform Platform
	notifier Notifier
}

// NewExecutor 创建执行器
func NewExecutor(tasks storage.TaskRepository, logs storage.CommentLogRepository, platform Platform, notifier Notifier) *Executor {
	return &Executor{
		tasks:    tasks,
		logs:     logs,
		platform: platform,
		notifier: notifier,
	}
}

// Run 执行一个任务直到完成、暂停或失败
// ctx由调度器持有的取消句柄控制，取消后任务转为PAUSED
func (e *Executor) Run(ctx context.Context, t *task.Task) {
	// 前置检查：非RUNNING或额度已满直接返回
	if t.Status != task.StatusRunning || t.QuotaReached() {
		return
	}

	log.Printf("🚀 [执行器] 任务开始执行: ID=%s, Type=%s, 进度=%d/%d", t.ID, t.Type, t.CompletedComments, t.MaxComments)

	if err := e.run(ctx, t.ID); err != nil {
		// 任务级失败：循环外的错误统一落为ERROR状态
		log.Printf("⚠️ [执行器] 任务执行失败: ID=%s, Error=%v", t.ID, err)
		e.transitionError(t.ID, err.Error())
	}
}

// run 执行主循环（内部方法），返回任务级错误
func (e *Executor) run(ctx context.Context, taskID string) error {
	// 1. 加载历史评论记录作为去重集合（跨进程重启依然有效）
	noteIDs, err := e.logs.NoteIDsByTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("加载历史评论记录失败: %w", err)
	}
	acted := make(map[string]struct{}, len(noteIDs))
	for _, id := range noteIDs {
		acted[id] = struct{}{}
	}

	// 本轮已见过的noteId（同一轮内不重复抓取处理）
	seenThisRun := make(map[string]struct{})

	for {
		if canceled(ctx) {
			return e.transitionPaused(taskID)
		}

		// 以存储中的最新副本为准
		cur, err := e.tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if cur == nil || cur.Status != task.StatusRunning {
			return nil
		}
		if cur.QuotaReached() {
			return e.transitionCompleted(taskID)
		}

		// 2.a 抓取候选批次
		batch, err := e.fetchBatch(ctx, cur)
		if err != nil {
			if canceled(ctx) {
				return e.transitionPaused(taskID)
			}
			// 批次抓取失败属于任务级错误，由Run落为ERROR
			return fmt.Errorf("抓取候选笔记失败: %w", err)
		}

		// 2.b 无更多内容：正常结束本轮执行
		if len(batch) == 0 {
			log.Printf("ℹ️ [执行器] 无更多候选内容，任务本轮结束: ID=%s", taskID)
			return nil
		}

		// 2.c 过滤本轮已见条目，全部重复则继续抓取
		fresh := batch[:0]
		for _, note := range batch {
			if _, ok := seenThisRun[note.ID]; ok {
				continue
			}
			seenThisRun[note.ID] = struct{}{}
			fresh = append(fresh, note)
		}
		if len(fresh) == 0 {
			continue
		}

		// 2.d 处理前重读任务（权威状态与进度）
		cur, err = e.tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if cur == nil || cur.Status != task.StatusRunning {
			return nil
		}

		done, err := e.processBatch(ctx, cur, fresh, acted)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// processBatch 按序处理一个批次（内部方法）
// 返回done=true表示任务已结束（完成/暂停/停止），不再继续抓取
func (e *Executor) processBatch(ctx context.Context, cur *task.Task, batch []xhs.Note, acted map[string]struct{}) (bool, error) {
	for _, note := range batch {
		// 每条处理前检查取消信号
		if canceled(ctx) {
			return true, e.transitionPaused(cur.ID)
		}

		// 重读权威状态：外部暂停/删除/额度变化立即生效
		latest, err := e.tasks.GetByID(ctx, cur.ID)
		if err != nil {
			return true, err
		}
		if latest == nil || latest.Status != task.StatusRunning {
			return true, nil
		}
		if latest.QuotaReached() {
			return true, e.transitionCompleted(cur.ID)
		}

		// 已评论过的笔记直接跳过：不计数也不消耗延迟额度
		if _, ok := acted[note.ID]; ok {
			continue
		}

		// 延迟先于网络调用：延迟本身就是限速手段
		if err := e.randomDelay(ctx, latest.MinDelay, latest.MaxDelay); err != nil {
			return true, e.transitionPaused(cur.ID)
		}
		if canceled(ctx) {
			return true, e.transitionPaused(cur.ID)
		}

		comment := latest.Comments[rand.Intn(len(latest.Comments))]
		postErr := e.platform.PostComment(ctx, note.ID, note.XsecToken, comment)

		// 日志标题缺失时兜底抓取笔记页面，抓不到不影响评论结果
		title := note.Title
		if title == "" {
			if parsed, err := e.platform.NoteTitle(ctx, note.ID); err == nil {
				title = parsed
			}
		}

		// 无论成败都追加日志并纳入去重集合（失败的笔记不自动重试）
		entry := task.NewCommentLog(latest.ID, note.ID, title, comment)
		acted[note.ID] = struct{}{}

		if postErr != nil {
			// 单条失败不致命：记录后继续处理下一条
			log.Printf("⚠️ [执行器] 评论失败: TaskID=%s, NoteID=%s, Error=%v", latest.ID, note.ID, postErr)
			if err := e.logs.Append(context.Background(), entry.MarkFailure(postErr.Error())); err != nil {
				return true, err
			}
			e.recordItemError(latest.ID, postErr.Error())
			if canceled(ctx) {
				return true, e.transitionPaused(cur.ID)
			}
			continue
		}

		if err := e.logs.Append(context.Background(), entry.MarkSuccess()); err != nil {
			return true, err
		}

		// 读取-修改-写入：以最新落盘副本为基础递增进度
		completed, err := e.advanceProgress(cur.ID)
		if err != nil {
			return true, err
		}
		log.Printf("✅ [执行器] 评论成功: TaskID=%s, NoteID=%s", latest.ID, note.ID)
		if completed {
			return true, nil
		}
	}
	return false, nil
}

// fetchBatch 抓取一批候选笔记（内部方法）
// SEARCH任务每批随机选取一个关键词，HOMEPAGE任务拉取固定推荐流
func (e *Executor) fetchBatch(ctx context.Context, t *task.Task) ([]xhs.Note, error) {
	switch t.Type {
	case task.TypeSearch:
		keyword := t.Keywords[rand.Intn(len(t.Keywords))]
		return e.platform.SearchNotes(ctx, keyword, t.SortType, t.NoteType)
	case task.TypeHomepage:
		return e.platform.Homefeed(ctx)
	default:
		return nil, fmt.Errorf("未知任务类型: %s", t.Type)
	}
}

// randomDelay 随机延迟[min,max]秒，可被取消（内部方法）
func (e *Executor) randomDelay(ctx context.Context, minSec, maxSec int) error {
	if maxSec <= 0 {
		return nil
	}
	delay := time.Duration(minSec) * time.Second
	if maxSec > minSec {
		delay += time.Duration(rand.Intn((maxSec-minSec)*1000)) * time.Millisecond
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// advanceProgress 递增已完成评论数并处理完成边界（内部方法）
// 返回completed=true表示额度已满，任务已落为COMPLETED
func (e *Executor) advanceProgress(taskID string) (bool, error) {
	ctx := context.Background()

	cur, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return false, err
	}
	if cur == nil {
		return true, nil
	}

	cur.CompletedComments++
	cur.UpdatedAt = time.Now()
	completed := cur.QuotaReached()
	if completed {
		cur.Status = task.StatusCompleted
		log.Printf("🎉 [执行器] 任务完成: ID=%s, 共评论%d条", cur.ID, cur.CompletedComments)
	}
	if err := e.tasks.Save(ctx, cur); err != nil {
		return false, err
	}
	e.notifier.Publish(ctx)
	return completed, nil
}

// recordItemError 在error展示字段上记录单条失败信息（机会性写入，不改状态）
func (e *Executor) recordItemError(taskID, msg string) {
	ctx := context.Background()
	cur, err := e.tasks.GetByID(ctx, taskID)
	if err != nil || cur == nil || cur.Status != task.StatusRunning {
		return
	}
	cur.Error = msg
	cur.UpdatedAt = time.Now()
	if err := e.tasks.Save(ctx, cur); err != nil {
		return
	}
	e.notifier.Publish(ctx)
}

// transitionPaused 观察到取消信号后落为PAUSED（内部方法）
// 取消来源于调度器（用户暂停/进程关停），使用独立上下文保证可落盘
func (e *Executor) transitionPaused(taskID string) error {
	ctx := context.Background()

	cur, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if cur == nil || cur.Status != task.StatusRunning {
		// 任务已删除或状态已被外部改写
		return nil
	}

	cur.Status = task.StatusPaused
	cur.UpdatedAt = time.Now()
	if err := e.tasks.Save(ctx, cur); err != nil {
		return err
	}
	log.Printf("🛑 [执行器] 任务已暂停: ID=%s, 进度=%d/%d", cur.ID, cur.CompletedComments, cur.MaxComments)
	e.notifier.Publish(ctx)
	return nil
}

// transitionCompleted 额度已满时落为COMPLETED（内部方法）
func (e *Executor) transitionCompleted(taskID string) error {
	ctx := context.Background()

	cur, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if cur == nil || cur.Status != task.StatusRunning {
		return nil
	}

	cur.Status = task.StatusCompleted
	cur.UpdatedAt = time.Now()
	if err := e.tasks.Save(ctx, cur); err != nil {
		return err
	}
	e.notifier.Publish(ctx)
	return nil
}

// transitionError 任务级失败落为ERROR（内部方法）
func (e *Executor) transitionError(taskID, msg string) {
	ctx := context.Background()

	cur, err := e.tasks.GetByID(ctx, taskID)
	if err != nil || cur == nil {
		return
	}

	cur.Status = task.StatusError
	cur.Error = msg
	cur.UpdatedAt = time.Now()
	if err := e.tasks.Save(ctx, cur); err != nil {
		log.Printf("⚠️ [执行器] 写入ERROR状态失败: ID=%s, Error=%v", taskID, err)
		return
	}
	e.notifier.Publish(ctx)
}

// canceled 非阻塞检查取消信号
func canceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
