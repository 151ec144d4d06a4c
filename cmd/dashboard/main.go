package main

import "github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/cli/cmd"

func main() {
	cmd.Execute()
}
