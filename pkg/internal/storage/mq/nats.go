package mq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/yeisme/trackvault/pkg/configs"
)

const (
	drainTimeout   = 30 * time.Second
	flusherTimeout = 10 * time.Second
	// streamMaxAge 事件流保留时长，审计订阅者离线超过该时长会丢事件.
	streamMaxAge = 7 * 24 * time.Hour
)

// durableNames 主题中的 . 不能出现在 JetStream consumer 名里.
var durableNames = strings.NewReplacer(".", "-", "*", "any", ">", "all")

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// natsFactory 创建 NATS Publisher 与 Subscriber.
// 启用 JetStream 时先确保事件流存在，流覆盖 subject_prefix 下的全部主题.
func natsFactory(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	url := natsURL(cfg)
	opts := natsOptions(cfg)
	logger = logger.With(watermill.LogFields{"transport": "nats"})

	if cfg.NATS.JetStreamEnabled && cfg.NATS.JetStreamAutoProvision {
		if err := ensureStream(ctx, url, opts, cfg.NATS); err != nil {
			return nil, nil, err
		}
	}

	js := jetStreamConfig(cfg.NATS)
	marshaler := &nats.NATSMarshaler{}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		Marshaler:   marshaler,
		JetStream:   js,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("nats publisher: %w", err)
	}

	subCfg := nats.SubscriberConfig{
		URL:         url,
		NatsOptions: opts,
		Unmarshaler: marshaler,
		JetStream:   js,
	}

	// JetStream 下同名 durable 已经在实例间分摊消息，队列组只用于 core NATS
	if cfg.NATS.LoadBalance && !cfg.NATS.JetStreamEnabled {
		subCfg.QueueGroupPrefix = cfg.Common.ClientID
	}

	sub, err := nats.NewSubscriber(subCfg, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("nats subscriber: %w", err)
	}

	return pub, sub, nil
}

func natsOptions(cfg *configs.MQConfig) []nc.Option {
	c := cfg.Common
	opts := []nc.Option{
		nc.Name(c.ClientID),
		nc.MaxReconnects(c.MaxReconnects),
		nc.ReconnectWait(time.Duration(c.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(c.PingInterval) * time.Second),
		nc.MaxPingsOutstanding(c.MaxPingsOut),
		nc.ReconnectBufSize(c.BufferSize),
		nc.DrainTimeout(drainTimeout),
		nc.FlusherTimeout(flusherTimeout),
		nc.RetryOnFailedConnect(!c.StrictConnect),
	}

	switch {
	case cfg.NATS.JWT != "":
		opts = append(opts, nc.UserJWTAndSeed(cfg.NATS.JWT, cfg.NATS.NKey))
	case c.User != "":
		opts = append(opts, nc.UserInfo(c.User, c.Password))
	}

	return opts
}

// natsURL cluster_urls 优先，否则使用 common.url，缺少 scheme 时补 nats://.
func natsURL(cfg *configs.MQConfig) string {
	if len(cfg.NATS.ClusterURLs) > 0 {
		return strings.Join(cfg.NATS.ClusterURLs, ",")
	}

	if strings.Contains(cfg.Common.URL, "://") {
		return cfg.Common.URL
	}

	return "nats://" + cfg.Common.URL
}

func jetStreamConfig(js configs.MQNATSConfig) nats.JetStreamConfig {
	if !js.JetStreamEnabled {
		return nats.JetStreamConfig{Disabled: true}
	}

	return nats.JetStreamConfig{
		// 流由 ensureStream 创建，watermill 按主题建流会得到非法的流名
		AutoProvision: false,
		TrackMsgId:    js.JetStreamTrackMsgID,
		AckAsync:      js.JetStreamAckAsync,
		DurablePrefix: js.JetStreamDurablePrefix,
		DurableCalculator: func(prefix, topic string) string {
			if prefix == "" {
				return ""
			}

			return prefix + "-" + durableNames.Replace(topic)
		},
	}
}

// ensureStream 创建或更新事件流，使用独立的短连接.
func ensureStream(ctx context.Context, url string, opts []nc.Option, cfg configs.MQNATSConfig) error {
	conn, err := nc.Connect(url, opts...)
	if err != nil {
		return fmt.Errorf("nats connect %s: %w", url, err)
	}
	defer conn.Close()

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("jetstream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.SubjectPrefix + ">"},
		Storage:  jetstream.FileStorage,
		MaxAge:   streamMaxAge,
	})
	if err != nil {
		return fmt.Errorf("provision stream %s: %w", cfg.StreamName, err)
	}

	return nil
}
