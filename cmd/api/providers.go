package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/events"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/pkg/circuitbreaker"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

// eventsExchangeType 图书事件使用Topic Exchange,订阅方可以用book.*通配
const eventsExchangeType = "topic"

// providePersistence 打开存储句柄
// cleanup在应用退出时关闭所有数据库连接
func providePersistence(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*persistence.Handle, func(), error) {
	handle, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := handle.Close(context.Background()); err != nil {
			logger.Error("close book store failed", zap.Error(err))
		}
	}
	return handle, cleanup, nil
}

func provideStore(h *persistence.Handle) book.Store {
	return h.Store
}

func provideSequence(h *persistence.Handle) book.Sequence {
	return h.Sequence
}

func provideHealthPinger(h *persistence.Handle) handler.Pinger {
	return h
}

// provideEventPublisher 创建图书事件发布者
// mq未启用或RabbitMQ不可用时退化为NopPublisher,不影响服务启动
func provideEventPublisher(cfg *config.Config, logger *zap.Logger) (book.EventPublisher, func(), error) {
	noop := func() {}
	if !cfg.MQ.Enabled {
		return book.NopPublisher{}, noop, nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, eventsExchangeType, logger)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, book events disabled", zap.Error(err))
		return book.NopPublisher{}, noop, nil
	}

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close event publisher failed", zap.Error(err))
		}
	}
	metrics.InitMetrics()
	breaker := circuitbreaker.New("book-events", circuitbreaker.Config{
		Timeout:     cfg.MQ.BreakerTimeout,
		ReadyToTrip: circuitbreaker.TripAfter(cfg.MQ.BreakerFailures),
		OnStateChange: func(_ string, _, to circuitbreaker.State) {
			metrics.SetGauge(metrics.BookEventsBreakerState, float64(to))
		},
	}, logger)
	return events.NewBookEventPublisher(publisher, events.WithBreaker(breaker)), cleanup, nil
}
