// Package broadcast 提供任务列表快照的发布/订阅通道
// 每次任务存储变更后发布全量快照，SSE与WebSocket订阅方各自消费
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
)

// topicTaskSnapshot 任务快照主题
const topicTaskSnapshot = "tasks.snapshot"

// Broadcaster 任务状态广播器（对外导出）
// 不做diff、不做持久化，尽力投递，断连即丢弃
type Broadcaster struct {
	pubsub *gochannel.GoChannel
	tasks  storage.TaskRepository
}

// NewBroadcaster 创建广播器
func NewBroadcaster(tasks storage.TaskRepository) *Broadcaster {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 16},
		watermill.NopLogger{},
	)
	return &Broadcaster{pubsub: pubsub, tasks: tasks}
}

// snapshot 读取当前全量任务列表并序列化（内部方法）
func (b *Broadcaster) snapshot(ctx context.Context) ([]byte, error) {
	tasks, err := b.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取任务快照失败: %w", err)
	}
	return json.Marshal(tasks)
}

// Publish 任务存储变更后调用：读取全量列表并推送给所有订阅方
func (b *Broadcaster) Publish(ctx context.Context) {
	payload, err := b.snapshot(ctx)
	if err != nil {
		log.Printf("⚠️ [广播器] %v", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(topicTaskSnapshot, msg); err != nil {
		log.Printf("⚠️ [广播器] 发布快照失败: %v", err)
	}
}

// Subscribe 订阅任务快照流
// 订阅建立后立即收到一次当前快照，之后每次存储变更收到全量列表
// 返回的通道在ctx取消后关闭
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan []byte, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topicTaskSnapshot)
	if err != nil {
		return nil, fmt.Errorf("订阅任务快照失败: %w", err)
	}

	initial, err := b.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)

		// 先推送当前快照
		select {
		case out <- initial:
		case <-ctx.Done():
			return
		}

		for msg := range msgs {
			select {
			case out <- msg.Payload:
			default:
				// 订阅方消费过慢则丢弃本帧（尽力投递）
			}
			msg.Ack()
		}
	}()
	return out, nil
}

// Close 关闭广播器（断开所有订阅方）
func (b *Broadcaster) Close() error {
	return b.pubsub.Close()
}
