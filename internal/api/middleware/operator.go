package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// OperatorHeader 调用方声明的操作人 ID，用于填充 created_by / updated_by / deleted_by
const OperatorHeader = "X-Operator-ID"

const operatorKey = "operator_id"

// Operator 操作人识别中间件
// 请求头缺失时匿名放行；存在但不是合法 UUID 时返回 400
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(OperatorHeader)
		if raw == "" {
			c.Next()
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, 10001, "X-Operator-ID 必须为 UUID")
			c.Abort()
			return
		}

		c.Set(operatorKey, id.String())
		c.Next()
	}
}
