package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv 清理可能影响测试的环境变量
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"BOOKSHELF_ENV",
		"BOOKSHELF_DATABASE_DRIVER", "BOOKSHELF_DATABASE_HOST", "BOOKSHELF_DATABASE_USER", "BOOKSHELF_DATABASE_PASSWORD",
		"MONGODB_HOST", "MONGODB_USER", "MONGODB_PASS",
		"BOOKSHELF_SEQUENCE_DRIVER", "BOOKSHELF_SERVER_PORT",
		"BOOKSHELF_DATABASE_PORT", "BOOKSHELF_REDIS_PASSWORD", "BOOKSHELF_REDIS_DB", "BOOKSHELF_REDIS_MIN_IDLE_CONNS",
		"BOOKSHELF_MQ_ENABLED", "BOOKSHELF_TRACING_ENABLED", "BOOKSHELF_CORS_ALLOW_CREDENTIALS", "BOOKSHELF_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad(t *testing.T) {
	t.Run("缺少数据库凭据时拒绝启动", func(t *testing.T) {
		clearEnv(t)

		_, err := LoadFrom(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "host")
		assert.Contains(t, err.Error(), "user")
		assert.Contains(t, err.Error(), "password")
	})

	t.Run("兼容MONGODB_*环境变量", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MONGODB_HOST", "mongo.local")
		t.Setenv("MONGODB_USER", "root")
		t.Setenv("MONGODB_PASS", "secret")

		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, DriverMongo, cfg.Database.Driver)
		assert.Equal(t, "mongo.local", cfg.Database.Host)
		assert.Equal(t, "root", cfg.Database.User)
		assert.Equal(t, "secret", cfg.Database.Password)
		assert.Equal(t, 27017, cfg.Database.Port)
		assert.Equal(t, "microservices", cfg.Database.DBName)
		assert.Equal(t, "books", cfg.Database.Collection)
		assert.Equal(t, "admin", cfg.Database.AuthSource)
		assert.Equal(t, "SCRAM-SHA-256", cfg.Database.AuthMechanism)
		assert.Equal(t, 5*time.Second, cfg.Database.ServerSelectionTimeout)
		assert.Equal(t, "mongodb://mongo.local:27017", cfg.Database.MongoURI())
	})

	t.Run("BOOKSHELF_前缀优先", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MONGODB_HOST", "legacy")
		t.Setenv("BOOKSHELF_DATABASE_HOST", "primary")
		t.Setenv("MONGODB_USER", "root")
		t.Setenv("MONGODB_PASS", "secret")

		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "primary", cfg.Database.Host)
	})

	t.Run("memory驱动不需要凭据", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_DATABASE_DRIVER", "memory")

		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, DriverMemory, cfg.Database.Driver)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, SequenceStore, cfg.Sequence.Driver)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
		assert.Equal(t, uint32(5), cfg.MQ.BreakerFailures)
		assert.Equal(t, 30*time.Second, cfg.MQ.BreakerTimeout)
	})

	t.Run("读取YAML配置文件", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		yaml := `
server:
  port: 9090
database:
  driver: mysql
  host: db
  port: 3306
  user: app
  password: pw
  dbname: bookshelf
sequence:
  driver: redis
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

		cfg, err := LoadFrom(dir)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, DriverMySQL, cfg.Database.Driver)
		assert.Equal(t, SequenceRedis, cfg.Sequence.Driver)
		assert.Equal(t, "app:pw@tcp(db:3306)/bookshelf?charset=utf8mb4&parseTime=True", cfg.Database.DSN())
	})

	t.Run("mysql端口默认3306", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_DATABASE_DRIVER", "mysql")
		t.Setenv("BOOKSHELF_DATABASE_HOST", "db")
		t.Setenv("BOOKSHELF_DATABASE_USER", "app")
		t.Setenv("BOOKSHELF_DATABASE_PASSWORD", "pw")

		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 3306, cfg.Database.Port)
	})

	t.Run("零值默认的key也能被环境变量覆盖", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MONGODB_HOST", "mongo.local")
		t.Setenv("MONGODB_USER", "root")
		t.Setenv("MONGODB_PASS", "secret")
		t.Setenv("BOOKSHELF_DATABASE_PORT", "27018")
		t.Setenv("BOOKSHELF_REDIS_PASSWORD", "redis-secret")
		t.Setenv("BOOKSHELF_REDIS_DB", "2")
		t.Setenv("BOOKSHELF_REDIS_MIN_IDLE_CONNS", "3")
		t.Setenv("BOOKSHELF_MQ_ENABLED", "true")
		t.Setenv("BOOKSHELF_TRACING_ENABLED", "true")
		t.Setenv("BOOKSHELF_CORS_ALLOW_CREDENTIALS", "true")

		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 27018, cfg.Database.Port)
		assert.Equal(t, "redis-secret", cfg.Redis.Password)
		assert.Equal(t, 2, cfg.Redis.DB)
		assert.Equal(t, 3, cfg.Redis.MinIdleConns)
		assert.True(t, cfg.MQ.Enabled)
		assert.True(t, cfg.Tracing.Enabled)
		assert.True(t, cfg.CORS.AllowCredentials)
	})

	t.Run("无效日志级别", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_DATABASE_DRIVER", "memory")
		t.Setenv("BOOKSHELF_LOG_LEVEL", "loud")

		_, err := LoadFrom(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loud")
	})

	t.Run("不支持的驱动", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_DATABASE_DRIVER", "cassandra")

		_, err := LoadFrom(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("无效端口", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_DATABASE_DRIVER", "memory")
		t.Setenv("BOOKSHELF_SERVER_PORT", "70000")

		_, err := LoadFrom(t.TempDir())
		assert.Error(t, err)
	})
}
