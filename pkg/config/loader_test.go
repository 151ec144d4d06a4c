package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_FileMissing 配置文件不存在时返回默认配置
func TestLoad_FileMissing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

// TestLoad_PartialOverride 配置文件只覆盖指定字段，其余保持默认
func TestLoad_PartialOverride(t *testing.T) {
	path := writeConfig(t, `
mode: release
server:
  port: 9090
database:
  type: postgres
  dsn: "host=localhost user=app dbname=dashboard sslmode=disable"
xhs:
  sign_service_url: "http://127.0.0.1:6006"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host) // 未覆盖，保持默认
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "http://127.0.0.1:6006", cfg.XHS.SignServiceURL)
	assert.Equal(t, 30*time.Second, cfg.XHS.Timeout) // 未覆盖，保持默认
}

// TestLoad_InvalidYAML 非法YAML返回错误
func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := config.Load(path)
	assert.Error(t, err)
}

// TestValidate 配置校验
func TestValidate(t *testing.T) {
	t.Run("默认配置合法", func(t *testing.T) {
		assert.NoError(t, config.Default().Validate())
	})

	t.Run("端口越界", func(t *testing.T) {
		cfg := config.Default()
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("不支持的数据库类型", func(t *testing.T) {
		cfg := config.Default()
		cfg.Database.Type = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("DSN为空", func(t *testing.T) {
		cfg := config.Default()
		cfg.Database.DSN = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("签名服务地址为空", func(t *testing.T) {
		cfg := config.Default()
		cfg.XHS.SignServiceURL = ""
		assert.Error(t, cfg.Validate())
	})
}
