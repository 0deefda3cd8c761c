package book

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

const tracerName = "bookshelf/book"

// UpdateStatus 更新结果
type UpdateStatus int

const (
	// StatusUpdated 至少一个字段发生了变化
	StatusUpdated UpdateStatus = iota
	// StatusUnchanged 提交的值与存储中一致,没有实际修改
	StatusUnchanged
)

func (s UpdateStatus) String() string {
	if s == StatusUnchanged {
		return "unchanged"
	}
	return "updated"
}

// Service 图书领域服务接口
// 设计说明:
// 1. 存储错误在这一层统一转换为AppError(内部错误),并记录error日志
// 2. 不存在的图书统一返回ErrBookNotFound,调用方用errors.Is判断
// 3. 服务本身无状态,可以被并发请求共享
type Service interface {
	// ListBooks 查询全部图书(不分页,顺序由存储决定)
	ListBooks(ctx context.Context) ([]*Book, error)

	// GetBook 根据ID获取图书
	GetBook(ctx context.Context, id int64) (*Book, error)

	// CreateBook 创建图书,ID由Sequence分配
	CreateBook(ctx context.Context, f Fields) (*Book, error)

	// UpdateBook 合并补丁字段,返回合并后的图书和更新状态
	UpdateBook(ctx context.Context, id int64, p Patch) (*Book, UpdateStatus, error)

	// DeleteBook 删除图书,返回删除前的图书
	DeleteBook(ctx context.Context, id int64) (*Book, error)
}

// service 领域服务实现
type service struct {
	store  Store
	seq    Sequence
	events EventPublisher
	logger *zap.Logger
}

// NewService 创建图书领域服务
// events为nil时不发布事件
func NewService(store Store, seq Sequence, events EventPublisher, logger *zap.Logger) Service {
	if events == nil {
		events = NopPublisher{}
	}
	metrics.InitMetrics()
	return &service{
		store:  store,
		seq:    seq,
		events: events,
		logger: logger.Named("book.service"),
	}
}

// ListBooks 查询全部图书
func (s *service) ListBooks(ctx context.Context) (books []*Book, err error) {
	ctx, done := s.observe(ctx, "list")
	defer func() { done(err) }()

	books, err = s.store.FindAll(ctx)
	if err != nil {
		return nil, s.storageError(err, msgListFailed)
	}
	if books == nil {
		books = []*Book{}
	}
	return books, nil
}

// GetBook 根据ID获取图书
func (s *service) GetBook(ctx context.Context, id int64) (b *Book, err error) {
	ctx, done := s.observe(ctx, "get")
	defer func() { done(err) }()

	return s.find(ctx, id)
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, f Fields) (b *Book, err error) {
	ctx, done := s.observe(ctx, "create")
	defer func() { done(err) }()

	// 1. 分配ID(原子自增,替代"查最大ID再+1")
	id, err := s.seq.Next(ctx)
	if err != nil {
		return nil, s.storageError(err, msgCreateFailed)
	}

	// 2. 持久化
	b = NewBook(id, f)
	if err := s.store.InsertOne(ctx, b); err != nil {
		return nil, s.storageError(err, msgCreateFailed)
	}

	s.logger.Info("book created", zap.Int64("id", b.ID), zap.String("title", b.Title))
	s.publish(ctx, NewEvent(EventCreated, b))
	return b, nil
}

// UpdateBook 更新图书
func (s *service) UpdateBook(ctx context.Context, id int64, p Patch) (b *Book, status UpdateStatus, err error) {
	ctx, done := s.observe(ctx, "update")
	defer func() { done(err) }()

	// 1. 查询图书是否存在
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, StatusUnchanged, err
	}

	// 2. $set合并
	result, err := s.store.UpdateOne(ctx, id, p)
	if err != nil {
		return nil, StatusUnchanged, s.storageError(err, msgUpdateFailed)
	}
	// 查询和更新之间被并发删除
	if result.Matched == 0 {
		return nil, StatusUnchanged, ErrBookNotFound
	}

	updated := existing.Apply(p)
	if result.Modified == 0 {
		s.logger.Info("The book is already up-to-date", zap.Int64("id", id))
		return updated, StatusUnchanged, nil
	}

	s.logger.Info("book updated", zap.Int64("id", id), zap.Int64("modified_count", result.Modified))
	s.publish(ctx, NewEvent(EventUpdated, updated))
	return updated, StatusUpdated, nil
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id int64) (b *Book, err error) {
	ctx, done := s.observe(ctx, "delete")
	defer func() { done(err) }()

	// 1. 查询待删除的图书(返回给调用方)
	b, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. 执行删除
	deleted, err := s.store.DeleteOne(ctx, id)
	if err != nil {
		return nil, s.storageError(err, msgDeleteFailed)
	}
	if deleted == 0 {
		return nil, ErrBookNotFound
	}

	s.logger.Info("book deleted", zap.Int64("id", id))
	s.publish(ctx, NewEvent(EventDeleted, b))
	return b, nil
}

// =========================================
// 辅助函数
// =========================================

// find 查询图书,区分"不存在"和存储错误
func (s *service) find(ctx context.Context, id int64) (*Book, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, s.storageError(err, msgGetFailed)
	}
	return b, nil
}

// storageError 记录存储错误并转换为统一的内部错误
func (s *service) storageError(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return apperrors.Wrap(err, message)
}

// publish 发布事件,失败只记录warn日志
func (s *service) publish(ctx context.Context, event Event) {
	result := "success"
	if err := s.events.Publish(ctx, event); err != nil {
		result = "failure"
		s.logger.Warn("publish book event failed",
			zap.String("type", string(event.Type)),
			zap.Int64("id", event.BookID),
			zap.Error(err),
		)
	}
	metrics.IncCounterVec(metrics.BookEventsPublishedTotal, map[string]string{
		"type":   string(event.Type),
		"result": result,
	})
}

// observe 为一次操作开启Span并在结束时记录指标
func (s *service) observe(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "book.Service/"+op)

	return ctx, func(err error) {
		result := "success"
		switch {
		case errors.Is(err, ErrBookNotFound):
			result = "not_found"
			// 不存在不算失败,不标记Span错误
			tracing.EndSpan(span, nil)
		case err != nil:
			result = "error"
			tracing.EndSpan(span, err)
		default:
			tracing.EndSpan(span, nil)
		}

		metrics.IncCounterVec(metrics.BookOperationsTotal, map[string]string{"operation": op, "result": result})
		metrics.ObserveHistogramVec(metrics.BookOperationDuration, map[string]string{"operation": op},
			time.Since(start).Seconds())
	}
}
