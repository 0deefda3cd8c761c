package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// GetBookUseCase 图书详情用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 执行详情用例,不存在返回book.ErrBookNotFound
func (uc *GetBookUseCase) Execute(ctx context.Context, id int64) (*BookResponse, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}
