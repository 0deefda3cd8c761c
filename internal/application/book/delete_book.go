package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// DeleteBookUseCase 删除图书用例
type DeleteBookUseCase struct {
	bookService book.Service
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService}
}

// Execute 执行删除用例,返回删除前的图书
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id int64) (*BookResponse, error) {
	b, err := uc.bookService.DeleteBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}
