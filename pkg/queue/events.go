package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher 发布 watermill 消息，由 MQ 客户端实现.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// publish 封装并发布一条事件.
func publish[T any](ctx context.Context, pub Publisher, topic string, payload T, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, topic, msg)
}

// PublishProjectCreated 发布 tv.project.created 事件.
func PublishProjectCreated(ctx context.Context, pub Publisher, payload ProjectCreatedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicProjectCreated, payload, opts...)
}

// PublishProjectRenamed 发布 tv.project.renamed 事件.
func PublishProjectRenamed(ctx context.Context, pub Publisher, payload ProjectRenamedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicProjectRenamed, payload, opts...)
}

// PublishProjectDeleted 发布 tv.project.deleted 事件.
func PublishProjectDeleted(ctx context.Context, pub Publisher, payload ProjectDeletedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicProjectDeleted, payload, opts...)
}

// PublishFileAttached 发布 tv.file.attached 事件.
func PublishFileAttached(ctx context.Context, pub Publisher, payload FileAttachedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicFileAttached, payload, opts...)
}

// PublishFileSwept 发布 tv.file.swept 事件.
func PublishFileSwept(ctx context.Context, pub Publisher, payload FileSweptPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicFileSwept, payload, opts...)
}

// ParseProjectCreated 解析 tv.project.created 事件.
func ParseProjectCreated(msg *message.Message) (Message[ProjectCreatedPayload], error) {
	return ParseWatermillMessage[ProjectCreatedPayload](msg)
}

// ParseProjectDeleted 解析 tv.project.deleted 事件.
func ParseProjectDeleted(msg *message.Message) (Message[ProjectDeletedPayload], error) {
	return ParseWatermillMessage[ProjectDeletedPayload](msg)
}

// ParseFileAttached 解析 tv.file.attached 事件.
func ParseFileAttached(msg *message.Message) (Message[FileAttachedPayload], error) {
	return ParseWatermillMessage[FileAttachedPayload](msg)
}
