// Package xhs 封装小红书平台的HTTP调用与签名协作方接口
package xhs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://edith.xiaohongshu.com"

// Note 平台笔记条目
type Note struct {
	ID        string `json:"id"`
	XsecToken string `json:"xsec_token"`
	Title     string `json:"title"`
}

// Session 平台会话凭证
type Session struct {
	A1         string // 设备标识Cookie
	WebSession string // 登录态Cookie
}

// Client 平台HTTP客户端（对外导出）
// 每次请求先经Signer生成认证头，再携带会话Cookie发起调用
type Client struct {
	baseURL string
	signer  Signer
	session func() Session // 会话凭证提供方（settings热更新）
	http    *http.Client
	titles  *TitleCache
}

// NewClient 创建平台客户端
// sessionFn 每次请求时取最新会话凭证，settings更新后无需重建客户端
func NewClient(baseURL string, signer Signer, sessionFn func() Session, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		signer:  signer,
		session: sessionFn,
		http:    &http.Client{Timeout: timeout},
		titles:  NewTitleCache(time.Hour),
	}
}

// envelope 平台统一响应结构（内部结构）
type envelope struct {
	Code    int             `json:"code"`
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// do 发起一次签名请求并解析平台响应（内部方法）
func (c *Client) do(ctx context.Context, method, uri string, body any, out any) error {
	sess := c.session()

	headers, err := c.signer.Sign(ctx, uri, body, sess.A1, sess.WebSession)
	if err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: 序列化请求体失败: %v", ErrDataFetch, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+uri, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDataFetch, err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	cookie := "a1=" + sess.A1
	if sess.WebSession != "" {
		cookie += "; web_session=" + sess.WebSession
	}
	req.Header.Set("Cookie", cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDataFetch, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: 解析响应失败: %v", ErrDataFetch, err)
	}
	if !env.Success {
		return classifyCode(env.Code, env.Msg)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: 解析data失败: %v", ErrDataFetch, err)
		}
	}
	return nil
}

// searchResult 搜索接口响应（内部结构）
type searchResult struct {
	Items []struct {
		ID        string `json:"id"`
		XsecToken string `json:"xsec_token"`
		ModelType string `json:"model_type"`
		NoteCard  struct {
			DisplayTitle string `json:"display_title"`
		} `json:"note_card"`
	} `json:"items"`
}

// SearchNotes 按关键词搜索笔记
// sortType: 排序方式（general/time_descending等）
// noteType: 笔记类型过滤（0=全部）
func (c *Client) SearchNotes(ctx context.Context, keyword, sortType, noteType string) ([]Note, error) {
	if sortType == "" {
		sortType = "general"
	}
	body := map[string]any{
		"keyword":   keyword,
		"page":      1,
		"page_size": 20,
		"sort":      sortType,
		"note_type": noteType,
	}

	var result searchResult
	if err := c.do(ctx, http.MethodPost, "/api/sns/web/v1/search/notes", body, &result); err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(result.Items))
	for _, item := range result.Items {
		// 搜索结果混杂用户/专题等条目，只保留笔记
		if item.ModelType != "" && item.ModelType != "note" {
			continue
		}
		notes = append(notes, Note{
			ID:        item.ID,
			XsecToken: item.XsecToken,
			Title:     item.NoteCard.DisplayTitle,
		})
	}
	return notes, nil
}

// homefeedResult 首页推荐流响应（内部结构）
type homefeedResult struct {
	Items []struct {
		ID        string `json:"id"`
		XsecToken string `json:"xsec_token"`
		NoteCard  struct {
			DisplayTitle string `json:"display_title"`
		} `json:"note_card"`
	} `json:"items"`
}

// Homefeed 拉取首页推荐流
func (c *Client) Homefeed(ctx context.Context) ([]Note, error) {
	body := map[string]any{
		"cursor_score":  "",
		"num":           20,
		"refresh_type":  1,
		"note_index":    0,
		"category":      "homefeed_recommend",
		"search_key":    "",
		"need_num":      10,
		"image_formats": []string{"jpg", "webp", "avif"},
	}

	var result homefeedResult
	if err := c.do(ctx, http.MethodPost, "/api/sns/web/v1/homefeed", body, &result); err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(result.Items))
	for _, item := range result.Items {
		notes = append(notes, Note{
			ID:        item.ID,
			XsecToken: item.XsecToken,
			Title:     item.NoteCard.DisplayTitle,
		})
	}
	return notes, nil
}

// PostComment 发表评论
// xsecToken来自搜索/推荐流条目，平台用其校验评论来源页面
func (c *Client) PostComment(ctx context.Context, noteID, xsecToken, content string) error {
	body := map[string]any{
		"note_id":  noteID,
		"content":  content,
		"at_users": []any{},
	}
	if xsecToken != "" {
		body["xsec_token"] = xsecToken
	}
	return c.do(ctx, http.MethodPost, "/api/sns/web/v1/comment/post", body, nil)
}
