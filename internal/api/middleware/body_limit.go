package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// bodyTooLargeCode 请求体超限业务码
const bodyTooLargeCode = 10005

// BodyLimit 全局请求体大小限制中间件
// 声明了 Content-Length 的超限请求直接返回 413；分块上传在读取时由 MaxBytesReader 截断
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			rejectBody(c, maxBytes)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(e.Err, &tooLarge) {
				rejectBody(c, maxBytes)
				return
			}
		}
	}
}

func rejectBody(c *gin.Context, maxBytes int64) {
	response.ErrorWithDetails(c, http.StatusRequestEntityTooLarge, bodyTooLargeCode, "请求体过大",
		fmt.Sprintf("limit %d bytes", maxBytes))
}
