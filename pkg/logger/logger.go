// Package logger 基于zap构建全局结构化日志
//
// 默认同时输出到控制台和bookshelf_api.log文件，level/format/output均可配置。
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置（与config.LogConfig字段一一对应，避免pkg依赖internal）
type Options struct {
	Level        string   // debug | info | warn | error
	Format       string   // console | json
	Outputs      []string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 创建zap日志
// 设计说明：
// 1. json格式使用ProductionConfig，console格式使用DevelopmentConfig
// 2. 时间格式ISO8601，便于检索
// 3. Outputs为空时只输出到stdout
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if strings.EqualFold(opts.Format, "console") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = !opts.EnableCaller
	cfg.Sampling = nil

	outputs := opts.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return logger, nil
}

// ParseLevel 解析日志级别，空字符串按info处理
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("无效的日志级别: %s", level)
	}
	return l, nil
}
