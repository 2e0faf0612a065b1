package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	nlog "github.com/yeisme/trackvault/pkg/log"
	"github.com/yeisme/trackvault/pkg/queue"
)

type publishFunc func(ctx context.Context, pub queue.Publisher, opts ...queue.HeaderOption) error

// emit 在事件开关打开时发布领域事件，发布失败只记录日志，不影响业务结果.
func (b *Base) emit(ctx context.Context, enabled bool, publish publishFunc) {
	if b.mqClient == nil || !b.cfg.Events.Enabled || !enabled {
		return
	}

	opts := []queue.HeaderOption{
		queue.WithProducer(configs.AppName),
		queue.WithRequestID(ctxPkg.GetRequestID(ctx)),
		queue.WithTraceID(ctxPkg.GetTraceID(ctx)),
	}

	if err := publish(context.WithoutCancel(ctx), b.mqClient, opts...); err != nil {
		ctxPkg.Logger(ctx).Warn().Err(err).Msg("failed to publish event")
	}
}

// Subscriber 订阅 watermill 消息，由 MQ 客户端实现.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// StartAudit 订阅给定主题，将每条事件写入审计日志，ctx 取消后停止.
func StartAudit(ctx context.Context, sub Subscriber, topics []string) error {
	for _, topic := range topics {
		ch, err := sub.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		go func(topic string, ch <-chan *message.Message) {
			for msg := range ch {
				auditMessage(topic, msg)
				msg.Ack()
			}
		}(topic, ch)
	}

	nlog.Logger().Info().Strs("topics", topics).Msg("event audit started")

	return nil
}

func auditMessage(topic string, msg *message.Message) {
	env, err := queue.ParseWatermillMessage[map[string]any](msg)
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("malformed event")
		return
	}

	nlog.Logger().Info().
		Str("topic", topic).
		Str("event_id", msg.UUID).
		Str("request_id", env.Header.RequestID).
		Str("trace_id", env.Header.TraceID).
		Time("occurred_at", env.Header.OccurredAt).
		Interface("payload", env.Payload).
		Msg("audit")
}
