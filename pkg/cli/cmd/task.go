package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/dto"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/cli/output"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
)

// taskCmd task子命令
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "任务管理命令",
	Long:  `查看dashboard中的评论任务。`,
}

// taskListCmd 列出任务
var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出所有任务",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Get(serverURL + "/api/v1/tasks")
		if err != nil {
			output.Error("请求服务器失败: %v", err)
			return err
		}
		defer resp.Body.Close()

		var result dto.APIResponse[dto.ListResponse[*task.Task]]
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			output.Error("解析响应失败: %v", err)
			return err
		}
		if result.Code != 0 {
			output.Error("服务器返回错误: %s", result.Message)
			return fmt.Errorf("server error: %s", result.Message)
		}

		if outputJSON {
			return output.PrintJSON(result.Data.Items)
		}

		table := output.NewTable([]string{"ID", "类型", "状态", "触发", "进度", "错误"})
		for _, t := range result.Data.Items {
			table.AddRow([]string{
				t.ID,
				string(t.Type),
				output.ColorStatus(string(t.Status)),
				string(t.TriggerType),
				fmt.Sprintf("%d/%d", t.CompletedComments, t.MaxComments),
				t.Error,
			})
		}
		table.Render()
		output.Info("共%d个任务", result.Data.Total)
		return nil
	},
}

func init() {
	taskCmd.AddCommand(taskListCmd)
}
