package output_test

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/cli/output"
)

var sgr = regexp.MustCompile("\x1b\\[[0-9;]*m")

// TestTable_ColoredCellsAlign 着色单元格不破坏列对齐
func TestTable_ColoredCellsAlign(t *testing.T) {
	// 测试环境无TTY时color默认禁用，强制开启以覆盖着色路径
	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()

	table := output.NewTable([]string{"ID", "STATUS", "PROGRESS"})
	table.AddRow([]string{"task-1", output.ColorStatus("RUNNING"), "1/5"})
	table.AddRow([]string{"task-2", "IDLE", "0/3"})

	var buf bytes.Buffer
	table.RenderTo(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4) // 表头+分隔线+两行数据

	// 着色确实发生
	assert.Contains(t, lines[2], "\x1b[")

	// 剥离控制符后各数据行的列起点一致
	row1 := sgr.ReplaceAllString(lines[2], "")
	row2 := sgr.ReplaceAllString(lines[3], "")
	assert.Equal(t, strings.Index(row1, "1/5"), strings.Index(row2, "0/3"))
	assert.Equal(t, strings.Index(row1, "RUNNING"), strings.Index(row2, "IDLE"))
}

// TestColorStatus 未知状态原样返回
func TestColorStatus(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()

	assert.Contains(t, output.ColorStatus("RUNNING"), "RUNNING")
	assert.Equal(t, "IDLE", output.ColorStatus("IDLE"))
}
