package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// NewLoggerAdapter 把 watermill 的日志写进 zerolog，附带 component=mq.
func NewLoggerAdapter(l *zerolog.Logger) watermill.LoggerAdapter {
	child := l.With().Str("component", "mq").Logger()

	return zerologAdapter{l: child}
}

type zerologAdapter struct {
	l zerolog.Logger
}

// emit 跳过被级别过滤掉的事件.
func (z zerologAdapter) emit(ev *zerolog.Event, msg string, fields watermill.LogFields) {
	if ev == nil {
		return
	}

	ev.Fields(map[string]any(fields)).Msg(msg)
}

func (z zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	z.emit(z.l.Error().Err(err), msg, fields)
}

func (z zerologAdapter) Info(msg string, fields watermill.LogFields) {
	z.emit(z.l.Info(), msg, fields)
}

func (z zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	z.emit(z.l.Debug(), msg, fields)
}

// Trace 对应 zerolog 的 trace 级别，默认不输出.
func (z zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	z.emit(z.l.Trace(), msg, fields)
}

func (z zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return zerologAdapter{l: z.l.With().Fields(map[string]any(fields)).Logger()}
}
