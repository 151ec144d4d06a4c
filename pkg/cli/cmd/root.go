// Package cmd 实现dashboard的命令行入口
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// 全局变量
	serverURL  string
	outputJSON bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "xhs-dashboard",
	Short: "小红书评论任务引擎命令行工具",
	Long: `xhs-dashboard 是小红书自动评论任务引擎的命令行工具。

支持的功能：
  - 启动dashboard服务（任务引擎+HTTP API）
  - 查看任务列表与状态

使用示例：
  # 启动服务
  xhs-dashboard serve --config ./config.yaml

  # 查看任务列表
  xhs-dashboard task list`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Dashboard服务器地址")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	// 添加子命令
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(versionCmd)
}
