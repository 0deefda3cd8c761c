package memory

import (
	"context"
	"sync"
)

// Sequence 进程内ID序列
type Sequence struct {
	mu      sync.Mutex
	current int64
}

// NewSequence 创建序列,下一个ID为start+1
func NewSequence(start int64) *Sequence {
	return &Sequence{current: start}
}

// Next 返回下一个ID
func (s *Sequence) Next(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current++
	return s.current, nil
}

// Seed 保证后续ID大于floor(只会向前推进,不会回退)
func (s *Sequence) Seed(_ context.Context, floor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < floor {
		s.current = floor
	}
	return nil
}
