package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// bookDocument books集合中的文档结构
// _id沿用历史数据的整数主键
type bookDocument struct {
	ID      int64  `bson:"_id"`
	Title   string `bson:"title"`
	Author  string `bson:"author"`
	Year    string `bson:"year"`
	Edition string `bson:"edition"`
}

// BookStore 图书存储实现(MongoDB)
type BookStore struct {
	coll *mongo.Collection
}

// NewBookStore 创建图书存储
func NewBookStore(coll *mongo.Collection) *BookStore {
	return &BookStore{coll: coll}
}

// FindAll 查询全部文档(自然顺序)
func (s *BookStore) FindAll(ctx context.Context) ([]*book.Book, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	books := make([]*book.Book, len(docs))
	for i := range docs {
		books[i] = toBookEntity(&docs[i])
	}
	return books, nil
}

// FindByID 根据_id查找
func (s *BookStore) FindByID(ctx context.Context, id int64) (*book.Book, error) {
	var doc bookDocument
	err := s.coll.FindOne(ctx, byID(id)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return toBookEntity(&doc), nil
}

// FindMaxID 按_id降序取第一条,空集合返回0
func (s *BookStore) FindMaxID(ctx context.Context) (int64, error) {
	var doc bookDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.ID, nil
}

// InsertOne 插入文档
func (s *BookStore) InsertOne(ctx context.Context, b *book.Book) error {
	_, err := s.coll.InsertOne(ctx, toBookDocument(b))
	return err
}

// UpdateOne $set合并补丁字段
func (s *BookStore) UpdateOne(ctx context.Context, id int64, p book.Patch) (book.UpdateResult, error) {
	set := patchToSet(p)

	// 空的$set会被服务端拒绝,只判断文档是否存在
	if len(set) == 0 {
		n, err := s.coll.CountDocuments(ctx, byID(id))
		if err != nil {
			return book.UpdateResult{}, err
		}
		return book.UpdateResult{Matched: n}, nil
	}

	res, err := s.coll.UpdateOne(ctx, byID(id), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return book.UpdateResult{}, err
	}
	return book.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// DeleteOne 删除文档
func (s *BookStore) DeleteOne(ctx context.Context, id int64) (int64, error) {
	res, err := s.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// =========================================
// 辅助函数:文档转换
// =========================================

func byID(id int64) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func patchToSet(p book.Patch) bson.D {
	set := bson.D{}
	if p.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *p.Title})
	}
	if p.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *p.Author})
	}
	if p.Year != nil {
		set = append(set, bson.E{Key: "year", Value: *p.Year})
	}
	if p.Edition != nil {
		set = append(set, bson.E{Key: "edition", Value: *p.Edition})
	}
	return set
}

func toBookDocument(b *book.Book) *bookDocument {
	return &bookDocument{
		ID:      b.ID,
		Title:   b.Title,
		Author:  b.Author,
		Year:    b.Year,
		Edition: b.Edition,
	}
}

func toBookEntity(doc *bookDocument) *book.Book {
	return &book.Book{
		ID:      doc.ID,
		Title:   doc.Title,
		Author:  doc.Author,
		Year:    doc.Year,
		Edition: doc.Edition,
	}
}
