// Package queue carries notifications through RabbitMQ so a separate worker
// process can deliver them.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one notification taken from the queue.
type Handler func(ctx context.Context, n model.Notification) error

// Client publishes to and consumes from one durable queue.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *slog.Logger
}

// Dial connects to RabbitMQ and declares the notification queue.
func Dial(url, queue string, log *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	log.Info("connected to rabbitmq", "queue", queue)
	return &Client{conn: conn, channel: channel, queue: queue, log: log}, nil
}

// Close releases the channel and the connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func encode(n model.Notification) ([]byte, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return body, nil
}

func decode(body []byte) (model.Notification, error) {
	var n model.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return model.Notification{}, fmt.Errorf("unmarshal notification: %w", err)
	}
	if n.To.Email == "" || n.Template == "" {
		return model.Notification{}, errors.New("notification without recipient or template")
	}
	return n, nil
}

// Send publishes n as a persistent message. It satisfies notify.Sender, so
// the API process can route its dispatcher through the broker.
func (c *Client) Send(ctx context.Context, n model.Notification) error {
	body, err := encode(n)
	if err != nil {
		return err
	}
	err = c.channel.PublishWithContext(ctx,
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Consume delivers queued notifications to h until ctx is cancelled or the
// channel closes.
func (c *Client) Consume(ctx context.Context, h Handler) error {
	msgs, err := c.channel.ConsumeWithContext(ctx,
		c.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	c.log.Info("consuming notifications", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq channel closed")
			}
			c.handle(ctx, d, h)
		}
	}
}

// handle acks on success. A malformed message is dropped. A failed
// delivery is requeued once; a second failure drops it.
func (c *Client) handle(ctx context.Context, d amqp.Delivery, h Handler) {
	n, err := decode(d.Body)
	if err != nil {
		c.log.Error("dropping malformed notification", "err", err, "size", len(d.Body))
		_ = d.Nack(false, false)
		return
	}

	if err := h(ctx, n); err != nil {
		requeue := !d.Redelivered
		c.log.Error("notification handler failed", "to", n.To.Email, "requeue", requeue, "err", err)
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}
