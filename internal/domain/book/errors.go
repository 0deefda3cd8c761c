package book

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound
)

// 存储失败时返回给客户端的信息(原始cause只记录日志)
const (
	msgListFailed   = "Error fetching all books from the database"
	msgGetFailed    = "Error fetching the book by id from the database"
	msgCreateFailed = "Error creating the new book"
	msgUpdateFailed = "Error updating the book"
	msgDeleteFailed = "Error deleting the book data"
)
