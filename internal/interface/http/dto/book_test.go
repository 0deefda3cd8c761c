package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func bind(body string) (book.Fields, error) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return BindBook(c)
}

func TestBindBook(t *testing.T) {
	t.Run("合法请求", func(t *testing.T) {
		fields, err := bind(`{"title":"The Hobbit","author":"J Tolkien","year":"1937","edition":"First"}`)
		require.NoError(t, err)
		assert.Equal(t, book.Fields{Title: "The Hobbit", Author: "J Tolkien", Year: "1937", Edition: "First"}, fields)
	})

	t.Run("忽略额外字段", func(t *testing.T) {
		fields, err := bind(`{"id":999,"isbn":"x","title":"The Hobbit","author":"J Tolkien","year":"1937","edition":"First"}`)
		require.NoError(t, err)
		assert.Equal(t, "The Hobbit", fields.Title)
	})

	t.Run("按字符计算长度", func(t *testing.T) {
		fields, err := bind(`{"title":"白夜行小说","author":"东野圭吾著","year":"1999","edition":"第一版本的"}`)
		require.NoError(t, err)
		assert.Equal(t, "白夜行小说", fields.Title)
	})

	invalidBodies := []string{
		"", "   ", "null", "{}", "[]", `"text"`, "42", "{not json", `{"id":5}`,
		"{\"title\":\"\xff\xfe\xfd\xfc\xfb\",\"author\":\"J Tolkien\",\"year\":\"1937\",\"edition\":\"First\"}",
	}
	for _, body := range invalidBodies {
		t.Run("无效请求体 "+body, func(t *testing.T) {
			_, err := bind(body)
			assert.Equal(t, apperrors.ErrInvalidData, err)
		})
	}

	tests := []struct {
		name    string
		body    string
		details string
	}{
		{"title过短", `{"title":"Hob","author":"J Tolkien","year":"1937","edition":"First"}`, "Title must be at least 5 characters long"},
		{"author过短", `{"title":"The Hobbit","author":"Joe","year":"1937","edition":"First"}`, "Author must be at least 5 characters long"},
		{"year过短", `{"title":"The Hobbit","author":"J Tolkien","year":"937","edition":"First"}`, "Year must be at least 4 characters long"},
		{"edition过短", `{"title":"The Hobbit","author":"J Tolkien","year":"1937","edition":"1st"}`, "Edition must be at least 5 characters long"},
		{"缺少author", `{"title":"The Hobbit","year":"1937","edition":"First"}`, "Author is required"},
		{"edition为null", `{"title":"The Hobbit","author":"J Tolkien","year":"1937","edition":null}`, "Edition is required"},
		{"year不是字符串", `{"title":"The Hobbit","author":"J Tolkien","year":1937,"edition":"First"}`, "Year must be a string"},
		{"title是对象", `{"title":{"en":"The Hobbit"},"author":"J Tolkien","year":"1937","edition":"First"}`, "Title must be a string"},
		{"缺失字段优先于后面的类型错误", `{"title":"The Hobbit","edition":5,"year":"1937"}`, "Author is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bind(tt.body)
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperrors.ErrCodeInvalidData, appErr.Code)
			assert.Equal(t, "Invalid data: "+tt.details, appErr.Message)
			assert.Equal(t, tt.details, appErr.Details)
			assert.Equal(t, "ERROR_INVALID_DATA", appErr.Reason)
		})
	}
}
