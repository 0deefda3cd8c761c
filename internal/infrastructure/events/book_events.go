// Package events 将图书领域事件发布到RabbitMQ
package events

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/circuitbreaker"
)

// MessagePublisher 消息发布接口(mq.Publisher实现)
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// BookEventPublisher 实现book.EventPublisher
// routing key使用事件类型(book.created / book.updated / book.deleted)
type BookEventPublisher struct {
	publisher MessagePublisher
	breaker   *circuitbreaker.Breaker
}

// Option BookEventPublisher可选配置
type Option func(*BookEventPublisher)

// WithBreaker 使用熔断器保护发布
// RabbitMQ持续失败时直接返回circuitbreaker.ErrOpenState,请求不再等待broker超时
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(p *BookEventPublisher) {
		p.breaker = b
	}
}

// NewBookEventPublisher 创建图书事件发布者
func NewBookEventPublisher(publisher MessagePublisher, opts ...Option) *BookEventPublisher {
	p := &BookEventPublisher{publisher: publisher}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish 发布事件
func (p *BookEventPublisher) Publish(ctx context.Context, event book.Event) error {
	if p.breaker == nil {
		return p.send(ctx, event)
	}
	return p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.send(ctx, event)
	})
}

func (p *BookEventPublisher) send(ctx context.Context, event book.Event) error {
	return p.publisher.Publish(ctx, string(event.Type), event)
}
