//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 修改本文件后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如book.NewService）
// - Injector: 声明最终要构造的目标类型（*gin.Engine）
// - cleanup: Provider返回的清理函数，Wire会按逆序组合成一个

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/router"
)

// infrastructureSet 基础设施层依赖
// 包含：存储句柄、ID序列、事件发布
var infrastructureSet = wire.NewSet(
	providePersistence,
	provideStore,
	provideSequence,
	provideHealthPinger,
	provideEventPublisher,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewBookHandler,
	handler.NewHealthHandler,
	router.New,
)

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎和cleanup函数（关闭事件发布者和存储连接）
//
// 教学说明：
// 配置和日志在main中创建后作为参数传入，Wire只负责组装业务依赖
func InitializeApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		handlerSet,
	)
	return nil, nil, nil
}
