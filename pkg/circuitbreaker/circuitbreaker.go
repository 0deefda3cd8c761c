// Package circuitbreaker 熔断器，保护对外部依赖（RabbitMQ等）的调用
//
// 三种状态：
//
//	CLOSED    正常放行，统计失败次数
//	OPEN      快速失败，返回ErrOpenState，不再调用下游
//	HALF_OPEN Timeout到期后放行少量探测请求，成功则关闭，失败则重新打开
//
// 教学要点：
// - 状态切换时generation递增，切换前发出的请求结果不再计入新状态
// - CLOSED状态的统计按Interval窗口重置，避免很久以前的失败累积触发熔断
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpenState 熔断器打开，请求未执行
var ErrOpenState = errors.New("circuit breaker is open")

// Counts 当前统计窗口内的计数
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态允许的探测请求数，0按1处理
	MaxRequests uint32

	// Interval CLOSED状态统计窗口，0表示不按时间重置
	Interval time.Duration

	// Timeout OPEN状态持续时间，到期转为HALF_OPEN
	Timeout time.Duration

	// ReadyToTrip 根据统计判断是否打开，nil时使用TripAfter(5)
	ReadyToTrip func(Counts) bool

	// OnStateChange 状态切换回调（更新监控指标等），在持有锁时调用，不能回调Breaker
	OnStateChange func(name string, from, to State)
}

// TripAfter 连续失败n次后打开
func TripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool {
		return c.ConsecutiveFailures >= n
	}
}

// Breaker 熔断器，可被多个goroutine共享
type Breaker struct {
	name   string
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
}

// New 创建熔断器，初始状态为CLOSED
func New(name string, cfg Config, logger *zap.Logger) *Breaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = TripAfter(5)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Breaker{
		name:   name,
		cfg:    cfg,
		logger: logger.Named("breaker").With(zap.String("breaker", name)),
		now:    time.Now,
	}
	b.resetWindow(b.now())
	return b
}

// Execute 在熔断器保护下执行fn
// 熔断打开时不调用fn，直接返回ErrOpenState；ctx被取消导致的失败不计入统计
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	generation, err := b.before()
	if err != nil {
		return err
	}

	err = fn(ctx)
	if err != nil && ctx.Err() != nil {
		b.release(generation)
		return err
	}

	b.after(generation, err == nil)
	return err
}

// State 当前状态（会触发OPEN到HALF_OPEN的超时切换）
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, _ := b.current(b.now())
	return state
}

// Counts 当前统计窗口的计数
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

func (b *Breaker) before() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.current(b.now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && b.counts.Requests >= b.cfg.MaxRequests:
		return generation, ErrOpenState
	}

	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) after(before uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	state, generation := b.current(now)
	if generation != before {
		return
	}

	if success {
		b.counts.success()
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.cfg.MaxRequests {
			b.setState(StateClosed, now)
		}
		return
	}

	b.counts.failure()
	switch state {
	case StateClosed:
		if b.cfg.ReadyToTrip(b.counts) {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		b.setState(StateOpen, now)
	}
}

// release 归还探测名额，结果不计入统计
func (b *Breaker) release(before uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, generation := b.current(b.now()); generation == before && b.counts.Requests > 0 {
		b.counts.Requests--
	}
}

// current 调用方需持有锁
func (b *Breaker) current(now time.Time) (State, uint64) {
	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.resetWindow(now)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.setState(StateHalfOpen, now)
		}
	}
	return b.state, b.generation
}

func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state
	b.generation++

	switch state {
	case StateClosed:
		b.resetWindow(now)
	case StateOpen:
		b.counts = Counts{}
		b.expiry = now.Add(b.cfg.Timeout)
	case StateHalfOpen:
		b.counts = Counts{}
		b.expiry = time.Time{}
	}

	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, prev, state)
	}

	if state == StateOpen {
		b.logger.Warn("circuit breaker opened",
			zap.Stringer("from", prev),
			zap.Duration("retry_after", b.cfg.Timeout),
		)
		return
	}
	b.logger.Info("circuit breaker state changed", zap.Stringer("from", prev), zap.Stringer("to", state))
}

func (b *Breaker) resetWindow(now time.Time) {
	b.counts = Counts{}
	if b.cfg.Interval > 0 {
		b.expiry = now.Add(b.cfg.Interval)
	} else {
		b.expiry = time.Time{}
	}
}
