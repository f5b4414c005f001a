package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogOption struct {
	Format   string // "console" 或 "json"
	LogDir   string // 为空时只输出到 stderr
	Level    string // debug / info / warn / error
	Compress bool   // 是否压缩轮转后的旧日志
}

const (
	defaultFileName   = "auction.log"
	defaultMaxSizeMB  = 200
	defaultMaxBackups = 10
	defaultMaxAgeDays = 7
)

var (
	mu    sync.RWMutex
	sugar = newDefault()
)

func newDefault() *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), zapcore.InfoLevel)
	return zap.New(core).Sugar()
}

// Init 按配置重建全局 logger，未调用时使用 stderr + info 级别
func Init(opt LogOption) error {
	level, err := zapcore.ParseLevel(strings.ToLower(opt.Level))
	if err != nil || opt.Level == "" {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if opt.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	if opt.LogDir != "" {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log dir %s: %w", opt.LogDir, err)
		}
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, defaultFileName),
			MaxSize:    defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAge:     defaultMaxAgeDays,
			Compress:   opt.Compress,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()

	mu.Lock()
	old := sugar
	sugar = l
	mu.Unlock()

	_ = old.Sync()
	return nil
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, args ...any) {
	current().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	current().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	current().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	current().Errorf(format, args...)
}

// Sync 刷新缓冲，进程退出前调用
func Sync() {
	_ = current().Sync()
}
