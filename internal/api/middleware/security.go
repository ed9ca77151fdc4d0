package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// SecurityOptions 安全响应头参数，来自 server.security 配置
type SecurityOptions struct {
	ContentSecurityPolicy string
	// HSTSMaxAge 单位秒，0 表示不下发 Strict-Transport-Security（由前置网关终止 TLS 时使用）
	HSTSMaxAge int
}

// SecurityHeaders 安全 HTTP 头中间件
// 响应只有 JSON 与 xlsx 附件，CSP 默认拒绝全部资源
func SecurityHeaders(opts SecurityOptions) gin.HandlerFunc {
	csp := opts.ContentSecurityPolicy
	if csp == "" {
		csp = "default-src 'none'; frame-ancestors 'none'"
	}
	var hsts string
	if opts.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(opts.HSTSMaxAge) + "; includeSubDomains"
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", csp)
		// 响应携带乐观锁 version，禁止中间缓存
		h.Set("Cache-Control", "no-store")
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}

		c.Next()
	}
}
