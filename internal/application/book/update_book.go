package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// UpdateBookUseCase 更新图书用例
// 学习要点:
// 1. PUT提交完整的四个字段,用PatchFrom构造补丁
// 2. 值未变化(StatusUnchanged)同样算成功,响应与修改成功一致
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// Execute 执行更新用例
// 返回值为路径中的id加上提交的字段
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id int64, req BookRequest) (*BookResponse, error) {
	b, _, err := uc.bookService.UpdateBook(ctx, id, book.PatchFrom(req.fields()))
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}
