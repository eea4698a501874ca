package amqp

import (
	"errors"
	"fmt"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp091.Channel the consumer uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

// Client owns a broker connection and one channel on it.
type Client struct {
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

// Dial opens a connection and a channel.
func Dial(url string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	return &Client{conn: conn, ch: ch}, nil
}

// Channel returns the client's channel.
func (c *Client) Channel() Channel {
	return c.ch
}

// Close closes the channel, then the connection.
func (c *Client) Close() error {
	return errors.Join(c.ch.Close(), c.conn.Close())
}

var _ Channel = (*amqp091.Channel)(nil)
