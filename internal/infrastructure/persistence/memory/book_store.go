// Package memory 进程内图书存储
// 用于本地运行(database.driver=memory)和服务/接口层测试,重启即丢失数据。
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// BookStore 内存图书存储
type BookStore struct {
	mu    sync.RWMutex
	books map[int64]book.Book
}

// NewBookStore 创建内存存储,可选地预置图书
func NewBookStore(seed ...book.Book) *BookStore {
	s := &BookStore{books: make(map[int64]book.Book, len(seed))}
	for _, b := range seed {
		s.books[b.ID] = b
	}
	return s
}

// FindAll 按ID升序返回全部图书
func (s *BookStore) FindAll(_ context.Context) ([]*book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*book.Book, 0, len(s.books))
	for _, b := range s.books {
		result = append(result, &b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// FindByID 根据ID查找图书
func (s *BookStore) FindByID(_ context.Context, id int64) (*book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return &b, nil
}

// FindMaxID 返回最大ID,空存储返回0
func (s *BookStore) FindMaxID(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxID int64
	for id := range s.books {
		if id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

// InsertOne 插入图书
func (s *BookStore) InsertOne(_ context.Context, b *book.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books[b.ID] = *b
	return nil
}

// UpdateOne 合并补丁字段
func (s *BookStore) UpdateOne(_ context.Context, id int64, p book.Patch) (book.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.books[id]
	if !ok {
		return book.UpdateResult{}, nil
	}

	result := book.UpdateResult{Matched: 1}
	if existing.Differs(p) {
		s.books[id] = *existing.Apply(p)
		result.Modified = 1
	}
	return result, nil
}

// DeleteOne 删除图书
func (s *BookStore) DeleteOne(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return 0, nil
	}
	delete(s.books, id)
	return 1, nil
}

// Ping 内存存储始终可用
func (s *BookStore) Ping(_ context.Context) error {
	return nil
}
