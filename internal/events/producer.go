// Package events publishes order lifecycle events to Kafka. Publishing
// happens after the storage transaction committed and never fails the
// triggering request.
package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

const (
	OrderCreatedTopic       = "orders.created"
	OrderStatusChangedTopic = "orders.status_changed"
)

type OrderCreatedEvent struct {
	OrderID     int64     `json:"order_id"`
	CustomerID  int64     `json:"customer_id"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	EventTime   time.Time `json:"event_time"`
}

type OrderStatusChangedEvent struct {
	OrderID    int64     `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	EventTime  time.Time `json:"event_time"`
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewKafkaProducer(brokers []string, logger *logrus.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return &KafkaProducer{producer: producer, logger: logger}, nil
}

func (p *KafkaProducer) OrderCreated(o models.Order) {
	p.publish(OrderCreatedTopic, o.ID, OrderCreatedEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.String(),
		CreatedAt:   o.CreatedAt,
		EventTime:   time.Now().UTC(),
	})
}

func (p *KafkaProducer) OrderStatusChanged(orderID int64, from, to models.Status) {
	p.publish(OrderStatusChangedTopic, orderID, OrderStatusChangedEvent{
		OrderID:    orderID,
		FromStatus: string(from),
		ToStatus:   string(to),
		EventTime:  time.Now().UTC(),
	})
}

func (p *KafkaProducer) publish(topic string, orderID int64, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to marshal event")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(orderID, 10)),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("topic", topic).Error("Failed to publish event")
		return
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"order_id":  orderID,
	}).Info("Event published")
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
