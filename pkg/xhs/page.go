package xhs

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const notePageBaseURL = "https://www.xiaohongshu.com"

// NoteTitle 从笔记网页抓取标题（搜索/推荐流条目缺少标题时的兜底）
// 网页为公开页面，不走签名链路
func (c *Client) NoteTitle(ctx context.Context, noteID string) (string, error) {
	if title, ok := c.titles.Get(noteID); ok {
		return title, nil
	}

	url := fmt.Sprintf("%s/explore/%s", notePageBaseURL, noteID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDataFetch, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	sess := c.session()
	if sess.A1 != "" {
		req.Header.Set("Cookie", "a1="+sess.A1)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDataFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: 笔记页面返回状态 %d", ErrDataFetch, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: 解析笔记页面失败: %v", ErrDataFetch, err)
	}

	title := ParseNoteTitle(doc)
	c.titles.Set(noteID, title)
	return title, nil
}

// ParseNoteTitle 从笔记页面文档提取标题（对外导出，便于测试）
// 优先取og:title元信息，其次取页面title标签
func ParseNoteTitle(doc *goquery.Document) string {
	if title, ok := doc.Find(`meta[name="og:title"]`).Attr("content"); ok && title != "" {
		return strings.TrimSuffix(title, " - 小红书")
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && title != "" {
		return strings.TrimSuffix(title, " - 小红书")
	}

	title := strings.TrimSpace(doc.Find("title").Text())
	return strings.TrimSuffix(title, " - 小红书")
}
