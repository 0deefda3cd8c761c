package book

import (
	"context"
)

// Store 图书存储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(mongo / mysql / memory)
// 2. 方法与文档数据库集合的单文档操作一一对应,每个操作单独原子
// 3. 便于测试替身,不依赖具体数据库实现
type Store interface {
	// FindAll 返回全部图书,顺序由存储决定
	FindAll(ctx context.Context) ([]*Book, error)

	// FindByID 根据ID查找图书,不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id int64) (*Book, error)

	// FindMaxID 按ID降序取第一条,空集合返回0
	FindMaxID(ctx context.Context) (int64, error)

	// InsertOne 插入一本图书(ID已由Sequence分配)
	InsertOne(ctx context.Context, book *Book) error

	// UpdateOne 按ID合并补丁字段
	UpdateOne(ctx context.Context, id int64, patch Patch) (UpdateResult, error)

	// DeleteOne 按ID删除,返回删除的条数
	DeleteOne(ctx context.Context, id int64) (int64, error)
}

// UpdateResult 更新结果
// Matched: 命中的文档数; Modified: 实际发生变化的文档数
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Sequence 图书ID序列
// 原子自增,多个写入方并发创建时也不会分配重复的ID
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}
