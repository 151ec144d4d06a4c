// Package config 定义dashboard服务的配置结构与加载逻辑
package config

import "time"

// Config 服务配置（对外导出）
type Config struct {
	Mode     string         `yaml:"mode"` // dev/release
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	XHS      XHSConfig      `yaml:"xhs"`
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite/mysql/postgres
	DSN  string `yaml:"dsn"`
}

// XHSConfig 平台与签名服务配置
type XHSConfig struct {
	BaseURL        string        `yaml:"base_url"`         // 平台API地址（默认官方地址）
	SignServiceURL string        `yaml:"sign_service_url"` // 本地签名服务地址
	A1             string        `yaml:"a1"`               // 设备标识Cookie（可被settings覆盖）
	WebSession     string        `yaml:"web_session"`      // 登录态Cookie（可被settings覆盖）
	Timeout        time.Duration `yaml:"timeout"`          // 平台/签名调用超时
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Mode: "dev",
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./dashboard.db",
		},
		XHS: XHSConfig{
			SignServiceURL: "http://127.0.0.1:5005",
			Timeout:        30 * time.Second,
		},
	}
}
