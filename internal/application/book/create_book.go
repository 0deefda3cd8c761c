package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// CreateBookUseCase 创建图书用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO,与HTTP层解耦
// 3. ID由领域服务通过Sequence分配,请求中不包含id
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// Execute 执行创建用例
func (uc *CreateBookUseCase) Execute(ctx context.Context, req BookRequest) (*BookResponse, error) {
	b, err := uc.bookService.CreateBook(ctx, req.fields())
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}
