package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/devenirpromoteur/realify-api/internal/logger"
)

// AMQPNotifier publishes toasts to a RabbitMQ queue so the frontend can pick
// them up over its event channel. Publish failures are logged and dropped;
// toasts are observability, not state.
type AMQPNotifier struct {
	channel *amqp.Channel
	queue   string
	log     *logger.Logger
}

// NewAMQPNotifier dials the broker, opens a channel and declares the durable
// toast queue.
func NewAMQPNotifier(url, queue string, log *logger.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &AMQPNotifier{channel: ch, queue: queue, log: log}, nil
}

// Push publishes the toast as a persistent JSON message.
func (n *AMQPNotifier) Push(ctx context.Context, t Toast) {
	body, err := json.Marshal(t)
	if err != nil {
		n.log.Error("Failed to marshal toast", err, nil)
		return
	}

	err = n.channel.PublishWithContext(
		ctx,
		"",      // exchange
		n.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		n.log.Error("Failed to publish toast", err, map[string]interface{}{
			"queue": n.queue,
			"title": t.Title,
		})
	}
}

// Close releases the channel.
func (n *AMQPNotifier) Close() error {
	return n.channel.Close()
}
