package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 不分页,返回集合中的全部图书
// 2. 没有图书时返回空数组而不是null
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// Execute 执行列表查询用例
func (uc *ListBooksUseCase) Execute(ctx context.Context) ([]*BookResponse, error) {
	books, err := uc.bookService.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*BookResponse, len(books))
	for i, b := range books {
		list[i] = toBookResponse(b)
	}
	return list, nil
}
