package kafka

import (
	"encoding/json"

	"lunchbox-orders/internal/config"
	broker "lunchbox-orders/internal/kafka"
	"lunchbox-orders/internal/models"
)

// Publisher streams order lifecycle events to the configured topics.
type Publisher struct {
	Producer *broker.Producer
	Topics   config.TopicConfig
}

func NewPublisher(producer *broker.Producer, topics config.TopicConfig) *Publisher {
	return &Publisher{Producer: producer, Topics: topics}
}

func (p *Publisher) PublishOrderCreated(order models.Order) error {
	return p.publish(p.Topics.OrderCreated, order)
}

func (p *Publisher) PublishOrderCancelled(order models.Order) error {
	return p.publish(p.Topics.OrderCancelled, order)
}

func (p *Publisher) PublishOrderSettled(order models.Order) error {
	return p.publish(p.Topics.OrderSettled, order)
}

func (p *Publisher) publish(topic string, order models.Order) error {
	msgBytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.Producer.Publish(topic, order.ID, msgBytes)
}
