// Package log 提供全局 zerolog logger：终端输出（console 或 json）加可选的 lumberjack 轮转文件.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/trackvault/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 按当前配置初始化全局 logger，只生效一次.
func Init() {
	initOnce.Do(func() { logger = build(configs.GetConfig(), os.Stderr) })
}

// Logger 返回全局 logger，未初始化时先按当前配置初始化.
func Logger() *zerolog.Logger {
	Init()

	return &logger
}

// build 根据配置组装 logger，并同步 zerolog 全局 logger 与 gin 的运行模式.
func build(cfg *configs.AppConfig, stderr io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || cfg.Log.Level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	writers := []io.Writer{terminal(cfg.Log.Format, stderr)}

	if cfg.Log.EnableFile && cfg.Log.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Log.FilePath,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		})
	}

	lc := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", configs.AppName)

	if cfg.Server.Debug {
		lc = lc.Caller().Stack()

		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	l := lc.Logger()
	if err != nil {
		l.Warn().Str("level", cfg.Log.Level).Msg("invalid log level, using info")
	}

	log.Logger = l

	return l
}

func terminal(format string, w io.Writer) io.Writer {
	if strings.EqualFold(format, "json") {
		return w
	}

	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
}

// GinWriter 把 gin 写出的文本行转成 zerolog 事件.
// gin 自身的 [WARNING] 行提升为 warn 级别.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	msg = strings.TrimSpace(strings.TrimPrefix(msg, "[GIN-debug]"))

	level := w.level
	if rest, ok := strings.CutPrefix(msg, "[WARNING]"); ok {
		msg = strings.TrimSpace(rest)
		level = max(level, zerolog.WarnLevel)
	}

	w.logger.WithLevel(level).Str("component", "gin").Msg(msg)

	return len(p), nil
}
