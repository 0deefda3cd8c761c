package mysql

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info // 开发环境打印SQL
	}

	db, err := open(cfg.Database.DSN(), cfg.Database, logLevel)
	if err != nil {
		return nil, err
	}

	logger.Info("Connected to MySQL successfully",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	return db, nil
}

// open 连接、配置连接池、迁移
func open(dsn string, cfg config.DatabaseConfig, logLevel gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Ping 健康检查
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// autoMigrate 自动迁移表结构
// 学习要点：AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&SequenceModel{},
	)
}

// BookModel GORM图书模型
// 设计说明:
// 1. 主键由序列分配,关闭自增
// 2. year与文档存储一致,按文本保存
// 3. 没有DeletedAt字段,删除是物理删除
type BookModel struct {
	ID      int64  `gorm:"primaryKey;autoIncrement:false;comment:图书ID"`
	Title   string `gorm:"size:255;not null;comment:书名"`
	Author  string `gorm:"size:255;not null;comment:作者"`
	Year    string `gorm:"size:32;not null;comment:出版年份"`
	Edition string `gorm:"size:255;not null;comment:版本"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// SequenceModel 命名计数器
type SequenceModel struct {
	Name  string `gorm:"primaryKey;size:64;comment:序列名称"`
	Value int64  `gorm:"not null;default:0;comment:当前值"`
}

// TableName 指定表名
func (SequenceModel) TableName() string {
	return "sequences"
}
