// Package queue 定义领域事件的主题、负载与消息封装.
//
// 每条事件编码为 Message[T]（Header + Payload，sonic JSON），
// 头部字段同时写入 watermill Metadata，订阅方无需解码负载即可按请求或链路过滤.
package queue

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// PayloadVersionV1 当前负载版本.
const PayloadVersionV1 = "v1"

// 消息元数据键.
const (
	MetadataTopic      = "topic"
	MetadataTraceID    = "trace_id"
	MetadataRequestID  = "request_id"
	MetadataProducer   = "producer"
	MetadataOccurredAt = "occurred_at"
	MetadataVersion    = "version"
)

// HeaderOption 填充事件头部.
type HeaderOption func(*EventHeader)

func WithTraceID(id string) HeaderOption { return func(h *EventHeader) { h.TraceID = id } }

func WithRequestID(id string) HeaderOption { return func(h *EventHeader) { h.RequestID = id } }

func WithProducer(p string) HeaderOption { return func(h *EventHeader) { h.Producer = p } }

// NewEventHeader 以当前 UTC 时间和 v1 版本创建头部.
func NewEventHeader(topic string, opts ...HeaderOption) EventHeader {
	h := EventHeader{Topic: topic, OccurredAt: time.Now().UTC(), Version: PayloadVersionV1}
	for _, opt := range opts {
		opt(&h)
	}

	return h
}

// metadata 返回需要写入 watermill Metadata 的头部字段，空值跳过.
func (h EventHeader) metadata() message.Metadata {
	md := message.Metadata{
		MetadataTopic:      h.Topic,
		MetadataOccurredAt: h.OccurredAt.Format(time.RFC3339Nano),
	}

	for k, v := range map[string]string{
		MetadataTraceID:   h.TraceID,
		MetadataRequestID: h.RequestID,
		MetadataProducer:  h.Producer,
		MetadataVersion:   h.Version,
	} {
		if v != "" {
			md[k] = v
		}
	}

	return md
}

// NewWatermillMessage 编码事件，消息 ID 使用 ULID 以便按时间排序.
func NewWatermillMessage[T any](topic string, payload T, opts ...HeaderOption) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)

	data, err := sonic.Marshal(Message[T]{Header: header, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewULID(), data)
	msg.Metadata = header.metadata()

	return msg, nil
}

// ParseWatermillMessage 把消息解码为 Message[T].
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	var m Message[T]
	if err := sonic.Unmarshal(msg.Payload, &m); err != nil {
		return m, fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}

	return m, nil
}
