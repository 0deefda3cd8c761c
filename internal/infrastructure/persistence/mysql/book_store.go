package mysql

import (
	"context"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// BookStore 图书存储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的Store接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. MySQL的RowsAffected只统计实际变化的行,UpdateOne在事务中先锁行再比较,
//    这样才能区分"命中"和"修改"
type BookStore struct {
	db *gorm.DB
	tx *TxManager
}

// NewBookStore 创建图书存储
func NewBookStore(db *gorm.DB, tx *TxManager) *BookStore {
	return &BookStore{db: db, tx: tx}
}

// FindAll 按ID升序返回全部图书
func (s *BookStore) FindAll(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	if err := getDB(ctx, s.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// FindByID 根据ID查找图书
func (s *BookStore) FindByID(ctx context.Context, id int64) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, s.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return toBookEntity(&model), nil
}

// FindMaxID 当前最大ID,空表返回0
func (s *BookStore) FindMaxID(ctx context.Context) (int64, error) {
	var maxID int64
	err := getDB(ctx, s.db).Model(&BookModel{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

// InsertOne 插入图书
func (s *BookStore) InsertOne(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := getDB(ctx, s.db).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("图书ID %d 已存在: %w", b.ID, err)
		}
		return err
	}
	return nil
}

// UpdateOne 合并补丁字段
func (s *BookStore) UpdateOne(ctx context.Context, id int64, p book.Patch) (book.UpdateResult, error) {
	var result book.UpdateResult

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		db := getDB(ctx, s.db)

		// SELECT ... FOR UPDATE
		var model BookModel
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		result.Matched = 1

		if !toBookEntity(&model).Differs(p) {
			return nil
		}
		if err := db.Model(&BookModel{}).Where("id = ?", id).Updates(patchToColumns(p)).Error; err != nil {
			return err
		}
		result.Modified = 1
		return nil
	})
	if err != nil {
		return book.UpdateResult{}, err
	}
	return result, nil
}

// DeleteOne 物理删除
func (s *BookStore) DeleteOne(ctx context.Context, id int64) (int64, error) {
	result := getDB(ctx, s.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func patchToColumns(p book.Patch) map[string]interface{} {
	columns := make(map[string]interface{}, 4)
	if p.Title != nil {
		columns["title"] = *p.Title
	}
	if p.Author != nil {
		columns["author"] = *p.Author
	}
	if p.Year != nil {
		columns["year"] = *p.Year
	}
	if p.Edition != nil {
		columns["edition"] = *p.Edition
	}
	return columns
}

// erDupEntry MySQL主键/唯一索引冲突错误码
const erDupEntry = 1062

// isDuplicateKey 插入的图书ID已存在
func isDuplicateKey(err error) bool {
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == erDupEntry
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:      b.ID,
		Title:   b.Title,
		Author:  b.Author,
		Year:    b.Year,
		Edition: b.Edition,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:      model.ID,
		Title:   model.Title,
		Author:  model.Author,
		Year:    model.Year,
		Edition: model.Edition,
	}
}
