package xhs

import (
	"errors"
	"fmt"
)

// 平台/签名调用的错误分类（对外导出）
// Executor把这些错误一律按单条失败处理，只有批次抓取阶段的错误才会升级为任务级失败
var (
	// ErrSignFailure 签名生成失败
	ErrSignFailure = errors.New("签名生成失败")

	// ErrNeedVerification 触发平台验证（需要人工处理验证码）
	ErrNeedVerification = errors.New("触发平台安全验证")

	// ErrIPBlocked IP被平台封禁
	ErrIPBlocked = errors.New("IP已被平台封禁")

	// ErrSessionExpired 会话已过期（需要重新登录）
	ErrSessionExpired = errors.New("会话已过期")

	// ErrDataFetch 数据获取失败（平台返回非成功响应）
	ErrDataFetch = errors.New("数据获取失败")
)

// 平台响应码
const (
	codeNeedVerification = -461   // 需要验证
	codeIPBlocked        = 300012 // IP封禁
	codeSessionExpired   = -100   // 登录态失效
)

// classifyCode 将平台响应码映射为错误分类（内部方法）
func classifyCode(code int, msg string) error {
	switch code {
	case codeNeedVerification:
		return fmt.Errorf("%w: %s", ErrNeedVerification, msg)
	case codeIPBlocked:
		return fmt.Errorf("%w: %s", ErrIPBlocked, msg)
	case codeSessionExpired:
		return fmt.Errorf("%w: %s", ErrSessionExpired, msg)
	default:
		return fmt.Errorf("%w: code=%d, msg=%s", ErrDataFetch, code, msg)
	}
}
