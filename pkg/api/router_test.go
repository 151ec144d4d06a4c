package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/engine"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/task"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/storage/memory"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/xhs"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// quietPlatform 永远返回空批次的平台客户端
type quietPlatform struct{}

func (quietPlatform) SearchNotes(_ context.Context, _, _, _ string) ([]xhs.Note, error) {
	return nil, nil
}
func (quietPlatform) Homefeed(_ context.Context) ([]xhs.Note, error) { return nil, nil }
func (quietPlatform) PostComment(_ context.Context, _, _, _ string) error {
	return nil
}
func (quietPlatform) NoteTitle(_ context.Context, _ string) (string, error) {
	return "", nil
}

// testServer 组装路由与引擎
func testServer(t *testing.T) (*gin.Engine, *storage.Store) {
	t.Helper()
	store := memory.NewStore()
	eng := engine.NewEngine(store, quietPlatform{})
	require.NoError(t, eng.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		eng.Stop(ctx)
	})
	return api.SetupRouter(eng, "test"), store
}

// doJSON 发起一次JSON请求并返回响应
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeEnvelope 解析统一响应结构
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, string, json.RawMessage) {
	t.Helper()
	var env struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Code, env.Message, env.Data
}

func createTaskBody() map[string]any {
	return map[string]any{
		"type":         "SEARCH",
		"keywords":     []string{"咖啡"},
		"comments":     []string{"不错"},
		"max_comments": 3,
		"trigger_type": "SCHEDULED",
		// 未来时间：创建后保持IDLE，测试期间不会真正执行
		"schedule_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	}
}

// TestHealthEndpoint 健康检查
func TestHealthEndpoint(t *testing.T) {
	router, _ := testServer(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	code, _, data := decodeEnvelope(t, w)
	assert.Zero(t, code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "test", health["version"])
}

// TestTaskAPI 任务API的完整流程
func TestTaskAPI(t *testing.T) {
	router, _ := testServer(t)

	var taskID string

	t.Run("创建任务", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", createTaskBody())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		_, _, data := decodeEnvelope(t, w)
		var created task.Task
		require.NoError(t, json.Unmarshal(data, &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, task.StatusIdle, created.Status)
		taskID = created.ID
	})

	t.Run("缺少必填字段返回400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", map[string]any{"type": "SEARCH"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("校验失败返回400", func(t *testing.T) {
		body := createTaskBody()
		body["keywords"] = []string{} // SEARCH任务缺少关键词
		w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("列表包含已创建任务", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/tasks", nil)
		require.Equal(t, http.StatusOK, w.Code)

		_, _, data := decodeEnvelope(t, w)
		var list struct {
			Total int         `json:"total"`
			Items []task.Task `json:"items"`
		}
		require.NoError(t, json.Unmarshal(data, &list))
		assert.Equal(t, 1, list.Total)
		assert.Equal(t, taskID, list.Items[0].ID)
	})

	t.Run("查询单个任务", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/tasks/"+taskID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("不存在的任务返回404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/tasks/no-such-id", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("部分更新任务", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/v1/tasks/"+taskID, map[string]any{
			"comments": []string{"新评论", "学到了"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		_, _, data := decodeEnvelope(t, w)
		var updated task.Task
		require.NoError(t, json.Unmarshal(data, &updated))
		assert.Equal(t, []string{"新评论", "学到了"}, updated.Comments)
		// 未提交的字段保持不变
		assert.Equal(t, []string{"咖啡"}, updated.Keywords)
	})

	t.Run("非法状态转换返回400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%s/status", taskID), map[string]any{
			"status": "PAUSED", // IDLE任务不能直接暂停
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("任务日志为空列表", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%s/logs", taskID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		_, _, data := decodeEnvelope(t, w)
		var list struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(data, &list))
		assert.Zero(t, list.Total)
	})

	t.Run("删除任务", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/v1/tasks/"+taskID, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/v1/tasks/"+taskID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("删除不存在的任务返回404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/v1/tasks/no-such-id", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestTaskStatusAPI 状态变更API
func TestTaskStatusAPI(t *testing.T) {
	router, store := testServer(t)
	ctx := context.Background()

	tk := task.New()
	tk.Type = task.TypeHomepage
	tk.Comments = []string{"学到了"}
	tk.MaxComments = 5
	tk.TriggerType = task.TriggerImmediate
	tk.Status = task.StatusError
	tk.CompletedComments = 5
	tk.Error = "上次失败"
	require.NoError(t, store.Tasks.Save(ctx, tk))

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%s/status", tk.ID), map[string]any{
		"status": "RUNNING",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, _, data := decodeEnvelope(t, w)
	var got task.Task
	require.NoError(t, json.Unmarshal(data, &got))
	// 终态重启：进度与错误信息被重置
	assert.Equal(t, task.StatusRunning, got.Status)
	assert.Zero(t, got.CompletedComments)
	assert.Empty(t, got.Error)
}

// TestTemplateAPI 模板API
func TestTemplateAPI(t *testing.T) {
	router, _ := testServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/templates", map[string]any{
		"name":    "好评模板",
		"content": "太棒了！",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, _, data := decodeEnvelope(t, w)
	var created task.Template
	require.NoError(t, json.Unmarshal(data, &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(t, router, http.MethodPut, "/api/v1/templates/"+created.ID, map[string]any{
		"name":    "好评模板",
		"content": "学到了！",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, _, data = decodeEnvelope(t, w)
	var list struct {
		Total int             `json:"total"`
		Items []task.Template `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "学到了！", list.Items[0].Content)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/templates/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestSettingsAPI 设置API
func TestSettingsAPI(t *testing.T) {
	router, _ := testServer(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/settings", map[string]any{
		"settings": map[string]string{
			"a1":          "cookie-value",
			"web_session": "ws-value",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, _, data := decodeEnvelope(t, w)
	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "cookie-value", resp.Settings["a1"])
	assert.Equal(t, "ws-value", resp.Settings["web_session"])
}

// TestCORSHeaders 跨域响应头
func TestCORSHeaders(t *testing.T) {
	router, _ := testServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
