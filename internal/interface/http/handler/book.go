package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	listBooks  *appbook.ListBooksUseCase
	getBook    *appbook.GetBookUseCase
	createBook *appbook.CreateBookUseCase
	updateBook *appbook.UpdateBookUseCase
	deleteBook *appbook.DeleteBookUseCase
	logger     *zap.Logger
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	createBook *appbook.CreateBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	logger *zap.Logger,
) *BookHandler {
	return &BookHandler{
		listBooks:  listBooks,
		getBook:    getBook,
		createBook: createBook,
		updateBook: updateBook,
		deleteBook: deleteBook,
		logger:     logger.Named("http.book"),
	}
}

// ListBooks 查询全部图书
// @Summary      图书列表
// @Description  返回集合中的全部图书,没有图书时返回空数组
// @Tags         图书
// @Produce      json
// @Success      200 {array}  appbook.BookResponse
// @Failure      500 {object} response.ErrorBody "Error fetching all books from the database"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.listBooks.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, books)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id  path      int  true  "图书ID"
// @Success      200 {object}  appbook.BookResponse
// @Failure      404 {object}  response.ErrorBody "Book not found"
// @Failure      500 {object}  response.ErrorBody
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := h.bookID(c)
	if !ok {
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// CreateBook 创建图书
// @Summary      创建图书
// @Description  id由服务端分配,请求体中的id会被忽略
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} appbook.BookResponse
// @Failure      400 {object} response.ErrorBody "Invalid data"
// @Failure      500 {object} response.ErrorBody "Error creating the new book"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	fields, ok := h.decode(c)
	if !ok {
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), toBookRequest(fields))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  四个字段都需要提交;内容未变化同样返回200
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        id      path int             true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} appbook.BookResponse
// @Failure      400 {object} response.ErrorBody "Invalid data"
// @Failure      404 {object} response.ErrorBody "Book not found"
// @Failure      500 {object} response.ErrorBody "Error updating the book"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := h.bookID(c)
	if !ok {
		return
	}
	fields, ok := h.decode(c)
	if !ok {
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), id, toBookRequest(fields))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  返回删除前的图书
// @Tags         图书
// @Produce      json
// @Param        id  path     int true "图书ID"
// @Success      200 {object} appbook.BookResponse
// @Failure      404 {object} response.ErrorBody "Book not found"
// @Failure      500 {object} response.ErrorBody "Error deleting the book data"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := h.bookID(c)
	if !ok {
		return
	}

	result, err := h.deleteBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// bookID 解析路径中的id
// 只接受十进制非负整数,其他形式视为不存在的资源(404)
func (h *BookHandler) bookID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	if !isDigits(raw) {
		response.Error(c, h.logger, book.ErrBookNotFound)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error(c, h.logger, book.ErrBookNotFound)
		return 0, false
	}
	return id, true
}

// decode 绑定并校验请求体
func (h *BookHandler) decode(c *gin.Context) (book.Fields, bool) {
	fields, err := dto.BindBook(c)
	if err != nil {
		h.logger.Info("invalid book payload", zap.String("reason", apperrors.GetAppError(err).Message))
		response.Error(c, h.logger, err)
		return book.Fields{}, false
	}
	return fields, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func toBookRequest(f book.Fields) appbook.BookRequest {
	return appbook.BookRequest{
		Title:   f.Title,
		Author:  f.Author,
		Year:    f.Year,
		Edition: f.Edition,
	}
}
