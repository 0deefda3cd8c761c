// Package mongodb MongoDB图书存储(默认驱动)
//
// 设计说明:
// 1. 连接参数与原有部署一致:端口27017、authSource=admin、SCRAM-SHA-256、5秒服务器选择超时
// 2. 数据库microservices、集合books,文档主键_id为整数
// 3. ID序列保存在counters集合,{_id:"books", seq:N}
package mongodb

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
)

// countersCollection ID序列所在集合
const countersCollection = "counters"

// Client MongoDB连接
// Close可以重复调用,未连接时调用也是安全的
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    config.DatabaseConfig
	logger *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Connect 创建MongoDB连接并Ping主节点
// 凭据缺失或连接失败都返回错误,调用方应终止启动
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Client, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("MongoDB连接需要host、user、password")
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI()).
		SetAuth(options.Credential{
			Username:      cfg.User,
			Password:      cfg.Password,
			AuthSource:    cfg.AuthSource,
			AuthMechanism: cfg.AuthMechanism,
		}).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// mongo.Connect不会真正建立连接,Ping确认凭据和网络可用
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB连接测试失败: %w", err)
	}

	logger.Info("Connected to MongoDB successfully",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName),
	)

	return &Client{
		client: client,
		db:     client.Database(cfg.DBName),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Books 图书集合
func (c *Client) Books() *mongo.Collection {
	return c.db.Collection(c.cfg.Collection)
}

// Counters 序列集合
func (c *Client) Counters() *mongo.Collection {
	return c.db.Collection(countersCollection)
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closeErr = c.client.Disconnect(ctx)
		if c.closeErr == nil {
			c.logger.Info("Connection to MongoDB closed")
		}
	})
	return c.closeErr
}
