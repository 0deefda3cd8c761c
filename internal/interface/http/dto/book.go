package dto

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// BookRequest 创建/更新请求
// 结构体本身就是白名单:id等其他字段在绑定时被丢弃
// 指针字段用来区分"缺失或null"(nil)和空字符串
type BookRequest struct {
	Title   *string `json:"title" example:"The Hobbit"`
	Author  *string `json:"author" example:"J.R.R. Tolkien"`
	Year    *string `json:"year" example:"1937"`
	Edition *string `json:"edition" example:"First"`
}

// bookField 请求体字段名与错误信息中的显示名
type bookField struct {
	key   string
	label string
	value func(*BookRequest) *string
}

var bookFields = []bookField{
	{"title", "Title", func(r *BookRequest) *string { return r.Title }},
	{"author", "Author", func(r *BookRequest) *string { return r.Author }},
	{"year", "Year", func(r *BookRequest) *string { return r.Year }},
	{"edition", "Edition", func(r *BookRequest) *string { return r.Edition }},
}

// BindBook 绑定并校验创建/更新请求体
//
// 处理流程:
// 1. 空请求体、null、{}、非对象JSON、非法UTF-8 → ErrInvalidData("Invalid data")
// 2. 字段缺失、为null或不是字符串 → 校验错误(按title/author/year/edition顺序)
// 3. 依次执行领域校验规则,返回第一个失败
//
// 返回的错误都是*AppError,可以直接交给response.Error
func BindBook(c *gin.Context) (book.Fields, error) {
	var req BookRequest
	err := c.ShouldBindBodyWith(&req, binding.JSON)

	// 非法UTF-8在解码时会被替换成U+FFFD,只能检查原始字节
	if body, ok := c.Get(gin.BodyBytesKey); ok {
		if raw, ok := body.([]byte); ok && !utf8.Valid(raw) {
			return book.Fields{}, apperrors.ErrInvalidData
		}
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return req.Fields("")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return req.Fields(typeErr.Field)
	default:
		return book.Fields{}, apperrors.ErrInvalidData
	}
}

// Fields 转换为领域字段并执行校验
// notString为类型不是字符串的字段名(来自绑定错误),没有则为空
func (r *BookRequest) Fields(notString string) (book.Fields, error) {
	if notString == "" && r.empty() {
		return book.Fields{}, apperrors.ErrInvalidData
	}

	for _, bf := range bookFields {
		if bf.key == notString {
			return book.Fields{}, invalid(book.NotString(bf.key, bf.label))
		}
		if bf.value(r) == nil {
			return book.Fields{}, invalid(book.Required(bf.key, bf.label))
		}
	}

	fields := book.Fields{
		Title:   *r.Title,
		Author:  *r.Author,
		Year:    *r.Year,
		Edition: *r.Edition,
	}
	if err := book.Validate(fields); err != nil {
		return book.Fields{}, invalid(err)
	}
	return fields, nil
}

func (r *BookRequest) empty() bool {
	return r.Title == nil && r.Author == nil && r.Year == nil && r.Edition == nil
}

func invalid(err error) error {
	var verr *book.ValidationError
	if errors.As(err, &verr) {
		return apperrors.Invalid(verr.Reason)
	}
	return apperrors.Invalid(err.Error())
}
