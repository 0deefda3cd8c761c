package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence sequences表中的命名计数器
// 教学要点:
// 1. 每次Next都在事务中SELECT ... FOR UPDATE锁住计数器行,并发事务排队执行
// 2. 计数器行不存在时用INSERT ... ON DUPLICATE KEY忽略冲突的方式补齐
type Sequence struct {
	db   *gorm.DB
	tx   *TxManager
	name string
}

// NewSequence 创建计数器
func NewSequence(db *gorm.DB, tx *TxManager, name string) *Sequence {
	return &Sequence{db: db, tx: tx, name: name}
}

// Next 自增并返回新值
func (s *Sequence) Next(ctx context.Context) (int64, error) {
	var next int64
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		row, err := s.lock(ctx)
		if err != nil {
			return err
		}
		next = row.Value + 1
		return getDB(ctx, s.db).Model(row).Update("value", next).Error
	})
	if err != nil {
		return 0, fmt.Errorf("分配图书ID失败: %w", err)
	}
	return next, nil
}

// Seed 保证计数器不小于floor
func (s *Sequence) Seed(ctx context.Context, floor int64) error {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		row, err := s.lock(ctx)
		if err != nil {
			return err
		}
		if row.Value >= floor {
			return nil
		}
		return getDB(ctx, s.db).Model(row).Update("value", floor).Error
	})
	if err != nil {
		return fmt.Errorf("初始化图书ID序列失败: %w", err)
	}
	return nil
}

// lock 确保计数器行存在并加行锁(必须在事务中调用)
func (s *Sequence) lock(ctx context.Context) (*SequenceModel, error) {
	db := getDB(ctx, s.db)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&SequenceModel{Name: s.name}).Error; err != nil {
		return nil, err
	}

	var row SequenceModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "name = ?", s.name).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
