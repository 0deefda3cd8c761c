package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// seedScript 计数器小于ARGV[1]时改为ARGV[1](比较和写入在服务端原子执行)
var seedScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
  redis.call('SET', KEYS[1], ARGV[1])
  return floor
end
return current
`)

// Sequence 基于INCR的图书ID序列
// 设计说明：
// 1. 多个服务实例共享同一个Redis时,ID在实例之间也不会重复
// 2. Key设计：bookshelf:{name}:id_seq
// 3. 不设置过期时间
type Sequence struct {
	client *redis.Client
	key    string
}

// NewSequence 创建序列
func NewSequence(client *redis.Client, name string) *Sequence {
	return &Sequence{
		client: client,
		key:    fmt.Sprintf("bookshelf:%s:id_seq", name),
	}
}

// Next 自增并返回新值
func (s *Sequence) Next(ctx context.Context) (int64, error) {
	id, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("分配图书ID失败: %w", err)
	}
	return id, nil
}

// Seed 保证计数器不小于floor
func (s *Sequence) Seed(ctx context.Context, floor int64) error {
	if err := seedScript.Run(ctx, s.client, []string{s.key}, floor).Err(); err != nil {
		return fmt.Errorf("初始化图书ID序列失败: %w", err)
	}
	return nil
}
