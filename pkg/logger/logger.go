package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options 日志配置（与config.LogConfig字段一致，避免pkg依赖internal）
type Options struct {
	Level  string // debug | info | warn | error
	Format string // text | json
	Output string // stdout | stderr | 文件路径
}

// New 根据配置创建logrus实例
// 返回的closer在输出到文件时负责关闭文件句柄，其余情况为空操作
func New(opts Options) (*logrus.Logger, func() error, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return nil, nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
	}
	log.SetLevel(level)

	switch opts.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, nil, fmt.Errorf("无效的日志格式: %q", opts.Format)
	}

	out, closer, err := openOutput(opts.Output)
	if err != nil {
		return nil, nil, err
	}
	log.SetOutput(out)

	return log, closer, nil
}

func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch output {
	case "", "stdout":
		return os.Stdout, noop, nil
	case "stderr":
		return os.Stderr, noop, nil
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f, f.Close, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
