package output

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// ansiPattern 匹配SGR着色序列，计算列宽时剥离
var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// displayWidth 单元格的可见宽度（不含着色控制符）
func displayWidth(s string) int {
	return len(ansiPattern.ReplaceAllString(s, ""))
}

// Table 简单表格输出
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable 创建表格
func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		widths:  widths,
	}
}

// AddRow 添加行
func (t *Table) AddRow(row []string) {
	// 更新列宽（按可见宽度，着色单元格不会撑宽列）
	for i, cell := range row {
		if i < len(t.widths) && displayWidth(cell) > t.widths[i] {
			t.widths[i] = displayWidth(cell)
		}
	}
	t.rows = append(t.rows, row)
}

// Render 渲染表格到标准输出
func (t *Table) Render() {
	t.RenderTo(os.Stdout)
}

// RenderTo 渲染表格到指定输出
func (t *Table) RenderTo(w io.Writer) {
	// 打印表头
	headerColor := color.New(color.FgCyan, color.Bold)
	for i, h := range t.headers {
		headerColor.Fprintf(w, "%-*s  ", t.widths[i], h)
	}
	fmt.Fprintln(w)

	// 打印分隔线
	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", t.widths[i]))
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintln(w)

	// 打印数据行（手动补齐：%-*s按字节宽度补齐会被着色控制符干扰）
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(t.widths) {
				pad := t.widths[i] - displayWidth(cell)
				if pad < 0 {
					pad = 0
				}
				fmt.Fprint(w, cell, strings.Repeat(" ", pad), "  ")
			}
		}
		fmt.Fprintln(w)
	}
}

// ColorStatus 按任务状态着色
func ColorStatus(status string) string {
	switch status {
	case "RUNNING":
		return color.GreenString(status)
	case "PAUSED":
		return color.YellowString(status)
	case "COMPLETED":
		return color.CyanString(status)
	case "ERROR":
		return color.RedString(status)
	default:
		return status
	}
}
