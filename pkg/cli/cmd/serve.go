package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/internal/storage"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/handler"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/cli/output"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/config"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/engine"
	pkgstorage "github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/xhs"
)

var configPath string

// serveCmd serve命令
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动dashboard服务",
	Long: `启动任务引擎与HTTP API服务。

示例：
  # 使用默认配置启动
  xhs-dashboard serve

  # 指定配置文件启动
  xhs-dashboard serve --config ./config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			output.Error("加载配置失败: %v", err)
			return err
		}
		output.Info("数据库: %s (%s)", cfg.Database.Type, cfg.Database.DSN)

		store, err := storage.Open(cfg.Database.Type, cfg.Database.DSN)
		if err != nil {
			output.Error("打开存储失败: %v", err)
			return err
		}
		defer store.Close()

		eng := engine.NewEngine(store, buildPlatformClient(cfg, store))

		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			output.Error("启动引擎失败: %v", err)
			return err
		}

		server := api.NewAPIServer(eng, api.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			Mode:         cfg.Mode,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}, Version)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		// 等待退出信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			log.Printf("🛑 收到信号 %s，开始优雅关闭", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		eng.Stop(shutdownCtx)
		if err := server.Shutdown(shutdownCtx); err != nil {
			output.Error("关闭服务失败: %v", err)
			return err
		}
		return nil
	},
}

// buildPlatformClient 组装平台客户端（内部方法）
// 会话凭证优先取settings，缺失时回退到配置文件
func buildPlatformClient(cfg *config.Config, store *pkgstorage.Store) *xhs.Client {
	signURL := cfg.XHS.SignServiceURL
	if v, err := store.Settings.Get(context.Background(), handler.SettingSignServiceURL); err == nil && v != "" {
		signURL = v
	}
	signer := xhs.NewHTTPSigner(signURL, cfg.XHS.Timeout)

	sessionFn := func() xhs.Session {
		ctx := context.Background()
		sess := xhs.Session{A1: cfg.XHS.A1, WebSession: cfg.XHS.WebSession}
		if v, err := store.Settings.Get(ctx, handler.SettingA1); err == nil && v != "" {
			sess.A1 = v
		}
		if v, err := store.Settings.Get(ctx, handler.SettingWebSession); err == nil && v != "" {
			sess.WebSession = v
		}
		return sess
	}

	return xhs.NewClient(cfg.XHS.BaseURL, signer, sessionFn, cfg.XHS.Timeout)
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "./config.yaml", "配置文件路径")
}
