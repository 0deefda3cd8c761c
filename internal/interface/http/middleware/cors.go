package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
)

// CORS 跨域资源共享中间件
//
// 教学要点：
// 1. 默认允许所有来源（"*"），与原有服务的行为一致
// 2. 生产环境可以在cors.allow_origins中配置具体域名
// 3. 预检请求（OPTIONS）直接返回204
//
// 注意：allow_credentials=true时不能使用"*"
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowOrigin := range cfg.AllowOrigins {
			if allowOrigin == "*" || allowOrigin == origin {
				c.Header("Access-Control-Allow-Origin", allowOrigin)
				allowed = true
				break
			}
		}

		if !allowed && origin != "" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		if expose != "" {
			c.Header("Access-Control-Expose-Headers", expose)
		}
		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if cfg.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
