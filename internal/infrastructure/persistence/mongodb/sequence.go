package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Sequence counters集合中的原子计数器
// 设计说明:
// 1. Next使用findOneAndUpdate + $inc,单文档原子操作,并发创建不会拿到相同ID
// 2. Seed使用$max,只会把计数器向前推,多实例同时启动也安全
type Sequence struct {
	coll *mongo.Collection
	name string
}

// NewSequence 创建计数器
func NewSequence(coll *mongo.Collection, name string) *Sequence {
	return &Sequence{coll: coll, name: name}
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// Next 自增并返回新值
func (s *Sequence) Next(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDocument
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: s.name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("分配图书ID失败: %w", err)
	}
	return doc.Seq, nil
}

// Seed 保证计数器不小于floor
func (s *Sequence) Seed(ctx context.Context, floor int64) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: s.name}},
		bson.D{{Key: "$max", Value: bson.D{{Key: "seq", Value: floor}}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("初始化图书ID序列失败: %w", err)
	}
	return nil
}
