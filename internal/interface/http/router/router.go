// Package router 注册HTTP路由和全局中间件
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// New 创建并配置Gin引擎
//
// 中间件执行顺序：Logger → Recovery → CORS → 路由匹配 → Handler
// Recovery放在Logger之后，panic产生的500也会被记录到请求日志和指标中
func New(cfg *config.Config, bookHandler *handler.BookHandler, healthHandler *handler.HealthHandler, logger *zap.Logger) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// 健康检查
	r.GET("/ping", healthHandler.Ping)

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	if cfg.Swagger.Enabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.POST("", bookHandler.CreateBook)
			books.GET("/:id", bookHandler.GetBook)
			books.PUT("/:id", bookHandler.UpdateBook)
			books.DELETE("/:id", bookHandler.DeleteBook)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.ErrorWithStatus(c, http.StatusNotFound, "Not found")
	})

	return r
}
