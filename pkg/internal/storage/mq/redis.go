package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/trackvault/pkg/configs"
)

// subscriberBuffer 每个订阅通道的缓冲.
const subscriberBuffer = 100

var errSubscriberClosed = errors.New("redis subscriber closed")

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisEnvelope Pub/Sub 只传字节，UUID 与 Metadata 随消息体一起编码.
type redisEnvelope struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

// redisPublisher 通过 PUBLISH 投递，Pub/Sub 没有持久化，离线的订阅者会丢消息.
type redisPublisher struct {
	rdb *redis.Client
}

// redisSubscriber 每次 Subscribe 占用一个 Pub/Sub 连接.
type redisSubscriber struct {
	rdb    *redis.Client
	logger watermill.LoggerAdapter

	mu     sync.Mutex
	subs   []*redis.PubSub
	closed chan struct{}
	wg     sync.WaitGroup
}

func redisFactory(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	opts := &redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}

	pubClient := redis.NewClient(opts)
	if err := pubClient.Ping(ctx).Err(); err != nil {
		_ = pubClient.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}

	sub := &redisSubscriber{
		rdb:    redis.NewClient(opts),
		logger: logger.With(watermill.LogFields{"transport": "redis"}),
		closed: make(chan struct{}),
	}

	return &redisPublisher{rdb: pubClient}, sub, nil
}

func (p *redisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		b, err := sonic.Marshal(redisEnvelope{UUID: msg.UUID, Metadata: msg.Metadata, Payload: msg.Payload})
		if err != nil {
			return fmt.Errorf("encode message %s: %w", msg.UUID, err)
		}

		if err := p.rdb.Publish(msg.Context(), topic, b).Err(); err != nil {
			return fmt.Errorf("redis publish %s: %w", topic, err)
		}
	}

	return nil
}

func (p *redisPublisher) Close() error {
	return p.rdb.Close()
}

// Subscribe 在订阅确认后才返回，之后发布的消息不会丢.
func (s *redisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.closed:
		return nil, errSubscriberClosed
	default:
	}

	ps := s.rdb.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	s.subs = append(s.subs, ps)

	out := make(chan *message.Message, subscriberBuffer)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(out)

		s.forward(ctx, ps.Channel(), out)
	}()

	return out, nil
}

func (s *redisSubscriber) forward(ctx context.Context, in <-chan *redis.Message, out chan<- *message.Message) {
	for {
		var rm *redis.Message

		select {
		case <-s.closed:
			return
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}

			rm = m
		}

		var env redisEnvelope
		if err := sonic.UnmarshalString(rm.Payload, &env); err != nil {
			s.logger.Error("drop undecodable message", err, watermill.LogFields{"channel": rm.Channel})
			continue
		}

		msg := message.NewMessage(env.UUID, env.Payload)
		for k, v := range env.Metadata {
			msg.Metadata.Set(k, v)
		}

		msg.SetContext(ctx)

		select {
		case out <- msg:
		case <-s.closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close 关闭全部订阅连接并等待转发协程退出，可重复调用.
func (s *redisSubscriber) Close() error {
	s.mu.Lock()

	select {
	case <-s.closed:
		s.mu.Unlock()
		return nil
	default:
	}

	close(s.closed)

	var errs []error
	for _, ps := range s.subs {
		errs = append(errs, ps.Close())
	}

	s.mu.Unlock()
	s.wg.Wait()

	return errors.Join(append(errs, s.rdb.Close())...)
}
