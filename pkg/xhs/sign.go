package xhs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Signer 签名客户端接口（对外导出）
// 由浏览器自动化会话生成平台请求所需的认证头，本引擎只消费该接口
type Signer interface {
	// Sign 为指定请求生成认证头
	// uri: 请求路径（含查询串）
	// body: 请求体（GET请求传nil）
	// a1: 平台设备标识Cookie
	// webSession: 可选的登录态Cookie
	Sign(ctx context.Context, uri string, body any, a1, webSession string) (map[string]string, error)
}

// HTTPSigner 基于本地签名服务的Signer实现（对外导出）
// 签名服务后端是一个活跃的浏览器会话，响应可能较慢（秒级），由http.Client超时兜底
type HTTPSigner struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSigner 创建签名客户端
func NewHTTPSigner(baseURL string, timeout time.Duration) *HTTPSigner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSigner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// signRequest 签名服务请求体（内部结构）
type signRequest struct {
	URI        string `json:"uri"`
	Data       any    `json:"data"`
	A1         string `json:"a1"`
	WebSession string `json:"web_session,omitempty"`
}

// Sign 调用签名服务生成认证头
func (s *HTTPSigner) Sign(ctx context.Context, uri string, body any, a1, webSession string) (map[string]string, error) {
	payload, err := json.Marshal(signRequest{URI: uri, Data: body, A1: a1, WebSession: webSession})
	if err != nil {
		return nil, fmt.Errorf("%w: 序列化签名请求失败: %v", ErrSignFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sign", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: 签名服务不可达: %v", ErrSignFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: 签名服务返回状态 %d", ErrSignFailure, resp.StatusCode)
	}

	var headers map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&headers); err != nil {
		return nil, fmt.Errorf("%w: 解析签名响应失败: %v", ErrSignFailure, err)
	}
	return headers, nil
}
