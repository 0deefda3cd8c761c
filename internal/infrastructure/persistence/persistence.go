// Package persistence 按配置装配图书存储和ID序列
//
// 设计说明:
// 1. database.driver选择存储:mongo(默认) / mysql / memory
// 2. sequence.driver选择ID序列:store(存储自身的计数器) / redis(INCR)
// 3. 启动时用存储中的最大ID初始化序列,已有数据的库不会分配重复ID
// 4. Handle.Close按打开的逆序释放连接,可以重复调用
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mongodb"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	redisstore "github.com/xiebiao/bookshelf/internal/infrastructure/persistence/redis"
)

// SeedableSequence 可以按已有数据初始化的ID序列
type SeedableSequence interface {
	book.Sequence
	Seed(ctx context.Context, floor int64) error
}

// Handle 存储句柄
type Handle struct {
	Store    book.Store
	Sequence book.Sequence

	ping    func(ctx context.Context) error
	closers []func(ctx context.Context) error

	closeOnce sync.Once
	closeErr  error
}

// Open 连接存储并初始化ID序列
// 任何一步失败都会释放已经建立的连接
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Handle, error) {
	h := &Handle{}

	var seq SeedableSequence
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		h.closers = append(h.closers, client.Close)
		h.ping = client.Ping
		h.Store = mongodb.NewBookStore(client.Books())
		seq = mongodb.NewSequence(client.Counters(), cfg.Sequence.Key)

	case config.DriverMySQL:
		db, err := mysql.NewDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		h.closers = append(h.closers, func(context.Context) error { return mysql.Close(db) })
		h.ping = func(ctx context.Context) error { return mysql.Ping(ctx, db) }
		tx := mysql.NewTxManager(db)
		h.Store = mysql.NewBookStore(db, tx)
		seq = mysql.NewSequence(db, tx, cfg.Sequence.Key)

	case config.DriverMemory:
		store := memory.NewBookStore()
		h.ping = store.Ping
		h.Store = store
		seq = memory.NewSequence(0)
		logger.Warn("Using in-memory book store, data will be lost on restart")

	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Database.Driver)
	}

	if cfg.Sequence.Driver == config.SequenceRedis {
		client, err := redisstore.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			_ = h.Close(ctx)
			return nil, err
		}
		h.closers = append(h.closers, func(context.Context) error { return client.Close() })
		seq = redisstore.NewSequence(client, cfg.Sequence.Key)
	}

	if err := seedSequence(ctx, h.Store, seq); err != nil {
		_ = h.Close(ctx)
		return nil, err
	}
	h.Sequence = seq

	logger.Info("Book store ready",
		zap.String("driver", cfg.Database.Driver),
		zap.String("sequence", cfg.Sequence.Driver),
	)
	return h, nil
}

// seedSequence 序列从当前最大ID之后开始
func seedSequence(ctx context.Context, store book.Store, seq SeedableSequence) error {
	maxID, err := store.FindMaxID(ctx)
	if err != nil {
		return fmt.Errorf("查询最大图书ID失败: %w", err)
	}
	return seq.Seed(ctx, maxID)
}

// Ping 检查存储连接
func (h *Handle) Ping(ctx context.Context) error {
	if h.ping == nil {
		return nil
	}
	return h.ping(ctx)
}

// Close 释放所有连接
func (h *Handle) Close(ctx context.Context) error {
	h.closeOnce.Do(func() {
		var errs []error
		for i := len(h.closers) - 1; i >= 0; i-- {
			if err := h.closers[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		h.closeErr = errors.Join(errs...)
	})
	return h.closeErr
}
