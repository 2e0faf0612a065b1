// Package mq 把 watermill 的 Publisher 与 Subscriber 包装成一个客户端，
// 后端（gochannel、NATS、Redis Pub/Sub）由各文件在 init 中注册.
package mq

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/trackvault/pkg/configs"
	nlog "github.com/yeisme/trackvault/pkg/log"
)

var ErrNotInitialized = errors.New("mq client not initialized")

// Factory 返回的 Publisher 与 Subscriber 可以是同一个实例.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// Types 按名称排序返回已注册的后端.
func Types() []configs.MQType {
	return slices.Sorted(maps.Keys(factories))
}

type Client struct {
	typ configs.MQType
	pub message.Publisher
	sub message.Subscriber

	closeOnce sync.Once
	closeErr  error
}

// New 按 cfg.Type 创建客户端，reg 非空且 enable_metrics 打开时为收发挂载 Prometheus 指标.
func New(ctx context.Context, cfg *configs.MQConfig, reg prometheus.Registerer) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("mq type %q not registered (have %v)", cfg.Type, Types())
	}

	pub, sub, err := factory(ctx, cfg, NewLoggerAdapter(nlog.Logger()))
	if err != nil {
		return nil, fmt.Errorf("mq %s: %w", cfg.Type, err)
	}

	c := &Client{typ: cfg.Type, pub: pub, sub: sub}

	if reg != nil && cfg.Common.EnableMetrics {
		if err := c.instrument(reg); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	nlog.Logger().Info().
		Str("type", string(cfg.Type)).
		Bool("metrics", reg != nil && cfg.Common.EnableMetrics).
		Msg("mq client ready")

	return c, nil
}

func (c *Client) instrument(reg prometheus.Registerer) error {
	b := metrics.NewPrometheusMetricsBuilder(reg, configs.AppName, "mq")

	pub, err := b.DecoratePublisher(c.pub)
	if err != nil {
		return fmt.Errorf("instrument publisher: %w", err)
	}

	sub, err := b.DecorateSubscriber(c.sub)
	if err != nil {
		return fmt.Errorf("instrument subscriber: %w", err)
	}

	c.pub, c.sub = pub, sub

	return nil
}

func (c *Client) Type() configs.MQType { return c.typ }

// Publish 逐条发布，消息携带 ctx 以便后端传递截止时间与链路信息.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.pub == nil {
		return ErrNotInitialized
	}

	for _, m := range msgs {
		m.SetContext(ctx)

		if err := c.pub.Publish(topic, m); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}

	return nil
}

// Subscribe ctx 取消后返回的通道关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.sub == nil {
		return nil, ErrNotInitialized
	}

	ch, err := c.sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	return ch, nil
}

func (c *Client) Ping(_ context.Context) error {
	if c == nil || c.pub == nil || c.sub == nil {
		return ErrNotInitialized
	}

	return nil
}

// Close 可重复调用，后续调用返回第一次的结果.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.closeOnce.Do(func() {
		var errs []error
		if c.pub != nil {
			errs = append(errs, c.pub.Close())
		}

		if c.sub != nil {
			errs = append(errs, c.sub.Close())
		}

		c.closeErr = errors.Join(errs...)
	})

	return c.closeErr
}
