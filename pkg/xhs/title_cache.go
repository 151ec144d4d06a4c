package xhs

import (
	"sync"
	"time"
)

// titleEntry 标题缓存条目（内部使用）
type titleEntry struct {
	title      string
	expireTime time.Time
}

// TitleCache 笔记标题缓存（对外导出）
// 标题抓取走公开网页，同一笔记可能被多个任务命中，缓存避免重复请求
type TitleCache struct {
	mu    sync.RWMutex
	cache map[string]*titleEntry
	ttl   time.Duration
}

// NewTitleCache 创建标题缓存
// ttl<=0时使用默认1小时
func NewTitleCache(ttl time.Duration) *TitleCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &TitleCache{
		cache: make(map[string]*titleEntry),
		ttl:   ttl,
	}
	// 启动清理协程，定期清理过期缓存
	go c.cleanupExpired()
	return c
}

// Set 缓存笔记标题
func (c *TitleCache) Set(noteID, title string) {
	if noteID == "" || title == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[noteID] = &titleEntry{
		title:      title,
		expireTime: time.Now().Add(c.ttl),
	}
}

// Get 查询笔记标题
func (c *TitleCache) Get(noteID string) (string, bool) {
	if noteID == "" {
		return "", false
	}

	c.mu.RLock()
	entry, exists := c.cache[noteID]
	c.mu.RUnlock()
	if !exists {
		return "", false
	}

	if time.Now().After(entry.expireTime) {
		c.mu.Lock()
		delete(c.cache, noteID)
		c.mu.Unlock()
		return "", false
	}
	return entry.title, true
}

// cleanupExpired 清理过期缓存（内部方法）
func (c *TitleCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for id, entry := range c.cache {
			if now.After(entry.expireTime) {
				delete(c.cache, id)
			}
		}
		c.mu.Unlock()
	}
}
