// Package messaging 领域事件的 Kafka 发布实现
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/latticepricing/pkg/mq"
)

// KafkaEventPublisher 基于 Kafka 的领域事件发布器
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaEventPublisher 创建事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

// envelope 事件信封，携带类型与发布时间供消费方路由
type envelope struct {
	EventType   string      `json:"event_type"`
	PublishedAt time.Time   `json:"published_at"`
	Payload     interface{} `json:"payload"`
}

// Publish 发布领域事件，key 用于分区保序
func (p *KafkaEventPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	msg := envelope{
		EventType:   eventType,
		PublishedAt: time.Now(),
		Payload:     payload,
	}
	if err := p.producer.SendMessage(ctx, p.topic, key, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}
	return nil
}
