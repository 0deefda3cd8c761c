package book

import (
	"fmt"
	"unicode/utf8"
)

// 字段最小长度(按字符数计算,不是字节数)
const (
	MinTitleLen   = 5
	MinAuthorLen  = 5
	MinYearLen    = 4
	MinEditionLen = 5
)

// ValidationError 字段校验失败
// Field为字段名(title/author/year/edition),Reason为面向用户的说明
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidateTitle 书名至少5个字符
func ValidateTitle(title string) error {
	return minLength("title", "Title", title, MinTitleLen)
}

// ValidateAuthor 作者至少5个字符
func ValidateAuthor(author string) error {
	return minLength("author", "Author", author, MinAuthorLen)
}

// ValidateYear 年份至少4个字符
// 注意:只检查长度,"abcd"同样可以通过,与历史行为保持一致
func ValidateYear(year string) error {
	return minLength("year", "Year", year, MinYearLen)
}

// ValidateEdition 版次至少5个字符
func ValidateEdition(edition string) error {
	return minLength("edition", "Edition", edition, MinEditionLen)
}

// Validate 按title、author、year、edition的顺序校验,返回第一个失败
func Validate(f Fields) error {
	checks := []func() error{
		func() error { return ValidateTitle(f.Title) },
		func() error { return ValidateAuthor(f.Author) },
		func() error { return ValidateYear(f.Year) },
		func() error { return ValidateEdition(f.Edition) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// Required 字段缺失或为null
func Required(field, label string) error {
	return &ValidationError{Field: field, Reason: label + " is required"}
}

// NotString 字段不是字符串
func NotString(field, label string) error {
	return &ValidationError{Field: field, Reason: label + " must be a string"}
}

func minLength(field, label, value string, minLen int) error {
	if utf8.RuneCountInString(value) < minLen {
		return &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("%s must be at least %d characters long", label, minLen),
		}
	}
	return nil
}
