package book

import (
	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// BookResponse 图书响应DTO
// 与HTTP层的JSON结构一一对应:{"id","title","author","year","edition"}
type BookResponse struct {
	ID      int64  `json:"id" example:"1"`
	Title   string `json:"title" example:"The Hobbit"`
	Author  string `json:"author" example:"J.R.R. Tolkien"`
	Year    string `json:"year" example:"1937"`
	Edition string `json:"edition" example:"First"`
}

// BookRequest 创建/更新请求DTO(四个字段都已通过校验)
type BookRequest struct {
	Title   string
	Author  string
	Year    string
	Edition string
}

func (r BookRequest) fields() book.Fields {
	return book.Fields{
		Title:   r.Title,
		Author:  r.Author,
		Year:    r.Year,
		Edition: r.Edition,
	}
}

func toBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:      b.ID,
		Title:   b.Title,
		Author:  b.Author,
		Year:    b.Year,
		Edition: b.Edition,
	}
}
