// Package middleware 提供API层的gin中间件
package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/dto"
)

// Recovery panic恢复中间件：拦截处理器panic，记录堆栈后统一返回500响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("⚠️ [API] panic已恢复: %s %s, Error=%v\n%s",
					c.Request.Method, c.Request.URL.Path, err, debug.Stack())

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
					500,
					"Internal Server Error",
				))
			}
		}()
		c.Next()
	}
}
