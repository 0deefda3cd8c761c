package book

// Book 图书实体
// 设计说明:
// 1. ID由服务端分配(单调递增),客户端传入的id一律忽略
// 2. Year按文本存储(与历史数据保持一致),不做数值解析
// 3. 四个业务字段都是必填项,校验规则见validation.go
type Book struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Year    string `json:"year"`
	Edition string `json:"edition"`
}

// Fields 创建图书时的输入(已通过校验的四个字段)
type Fields struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Year    string `json:"year"`
	Edition string `json:"edition"`
}

// NewBook 创建新图书(工厂方法)
// id由Sequence分配后传入
func NewBook(id int64, f Fields) *Book {
	return &Book{
		ID:      id,
		Title:   f.Title,
		Author:  f.Author,
		Year:    f.Year,
		Edition: f.Edition,
	}
}

// Patch 更新图书时的字段补丁
// nil字段表示"不修改",只有非nil字段会覆盖存储中的值($set语义)
type Patch struct {
	Title   *string
	Author  *string
	Year    *string
	Edition *string
}

// PatchFrom 用完整的字段构造补丁(PUT请求四个字段都会提交)
func PatchFrom(f Fields) Patch {
	return Patch{
		Title:   &f.Title,
		Author:  &f.Author,
		Year:    &f.Year,
		Edition: &f.Edition,
	}
}

// IsEmpty 补丁是否不包含任何字段
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Year == nil && p.Edition == nil
}

// Apply 将补丁合并到图书上,返回合并后的副本(不修改原对象)
func (b *Book) Apply(p Patch) *Book {
	merged := *b
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Author != nil {
		merged.Author = *p.Author
	}
	if p.Year != nil {
		merged.Year = *p.Year
	}
	if p.Edition != nil {
		merged.Edition = *p.Edition
	}
	return &merged
}

// Differs 补丁合并后是否与当前值不同
func (b *Book) Differs(p Patch) bool {
	return *b.Apply(p) != *b
}
