// Package events publishes order lifecycle messages. Publishing is
// fire-and-forget wiring around the service; a nil Publisher disables
// it entirely.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"demo/shop/internal/model"
)

type Publisher struct {
	w   *kafka.Writer
	log zerolog.Logger
}

func NewPublisher(brokers []string, topic string, log zerolog.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

func (p *Publisher) OrderCreated(ctx context.Context, o model.Order) {
	p.publish(ctx, "order.created", o.ID, o)
}

func (p *Publisher) ProductAdded(ctx context.Context, l model.OrderLine) {
	p.publish(ctx, "order.product_added", l.OrderID, l)
}

func (p *Publisher) publish(ctx context.Context, event string, orderID int64, payload any) {
	if p == nil {
		return
	}
	val, _ := json.Marshal(payload)
	err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: val,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event", Value: []byte(event)},
		},
	})
	if err != nil {
		p.log.Error().Err(err).Str("event", event).Int64("order_id", orderID).Msg("publish failed")
		return
	}
	p.log.Debug().Str("event", event).Int64("order_id", orderID).Msg("published")
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.w.Close()
}
