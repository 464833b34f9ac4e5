package events

import (
	"context"
	"encoding/json"
	"fmt"
	"music-nearby/internal/domain"
	"music-nearby/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

var _ ports.TransitionPublisher = (*RabbitPublisher)(nil)

const (
	ExchangeName = "nearby.events"
	QueueName    = "verdict_transitions"
)

const (
	EventEnter = "enter"
	EventExit  = "exit"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher fans verdict transitions out on a durable exchange.
type RabbitPublisher struct {
	ch channel
}

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	return conn, nil
}

func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &RabbitPublisher{ch: ch}, nil
}

type transitionMessage struct {
	Event      string   `json:"event"`
	LocationID int      `json:"location_id"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

// newTransitionMessage names the location that was entered, or the one that was left.
func newTransitionMessage(t domain.Transition) transitionMessage {
	msg := transitionMessage{
		Event:     EventExit,
		Timestamp: t.OccurredAt.UnixMilli(),
	}

	if id, near := t.To.IsNear(); near {
		msg.Event = EventEnter
		msg.LocationID = id
	} else if id, near := t.From.IsNear(); near {
		msg.LocationID = id
	}

	if t.Position != nil {
		lat, lon := t.Position.Latitude, t.Position.Longitude
		msg.Latitude, msg.Longitude = &lat, &lon
	}

	return msg
}

func (p *RabbitPublisher) PublishTransition(ctx context.Context, t domain.Transition) error {
	body, err := json.Marshal(newTransitionMessage(t))
	if err != nil {
		return fmt.Errorf("marshal transition: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    t.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish transition: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}
