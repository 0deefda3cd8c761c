package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/xiebiao/bookshelf/docs"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/logger"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// startupTimeout 连接存储、初始化ID序列的最长时间
const startupTimeout = 30 * time.Second

// @title        Bookshelf API
// @version      1.0
// @description  图书管理服务:图书的查询、创建、更新和删除
// @host         localhost:8080
// @BasePath     /
func main() {
	// 1. 加载配置（缺少数据库凭据时拒绝启动）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Outputs:      cfg.Log.Outputs,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	if err := run(cfg, zl); err != nil {
		zl.Error("bookshelf api exited with error", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	_ = zl.Sync()
}

// run 启动服务并阻塞到收到退出信号
// 所有defer都会在返回前执行，保证连接被释放
func run(cfg *config.Config, zl *zap.Logger) error {
	zl.Info("configuration loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("sequence_driver", cfg.Sequence.Driver),
	)

	// 3. 链路追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				zl.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
		zl.Info("tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	}

	// 4. 依赖注入（Wire生成）
	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	engine, cleanup, err := InitializeApp(startCtx, cfg, zl)
	cancel()
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()

	// 5. 启动HTTP服务器
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("bookshelf api listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", srv.Addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", srv.Addr)
	fmt.Printf("   图书接口: http://localhost%s/api/v1/books\n", srv.Addr)
	if cfg.Swagger.Enabled {
		fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", srv.Addr)
	}
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	// 6. 优雅关闭
	quit, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("HTTP服务器启动失败: %w", err)
		}
		return nil
	case <-quit.Done():
	}

	zl.Info("shutting down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器强制关闭: %w", err)
	}

	zl.Info("http server stopped")
	return nil
}
