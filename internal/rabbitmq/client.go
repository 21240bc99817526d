package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/contactbook/internal/config"
	"github.com/GoArmGo/contactbook/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

// attemptHeader хранит номер повторной попытки обработки сообщения.
const attemptHeader = "x-attempt"

// Client представляет собой клиент RabbitMQ для очереди очистки аватаров
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger

	maxAttempts int
	retryDelay  time.Duration
	publish     func(ctx context.Context, msg amqp.Publishing) error
}

// NewClient подключается к RabbitMQ и объявляет очередь
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Идемпотентно: очередь создается, только если ее еще нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)
	c := &Client{
		conn:        conn,
		channel:     ch,
		queue:       q,
		logger:      logger,
		maxAttempts: cfg.RabbitMQ.MaxAttempts,
		retryDelay:  cfg.RabbitMQ.RetryDelay,
	}
	c.publish = c.publishToQueue
	return c, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ connection", "error", err)
		}
	}
	c.logger.Info("RabbitMQ connection closed")
}

// PublishAvatarCleanup ставит в очередь удаление файла аватара.
func (c *Client) PublishAvatarCleanup(ctx context.Context, payload payloads.AvatarCleanupPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	err = c.publish(ctx, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return err
	}
	c.logger.Debug("avatar cleanup published", "queue", c.queue.Name, "key", payload.Key)
	return nil
}

func (c *Client) publishToQueue(ctx context.Context, msg amqp.Publishing) error {
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}
	return nil
}

// StartConsumingAvatarCleanup запускает горутину-потребитель.
// После ошибки обработчика сообщение публикуется заново с паузой, растущей с номером попытки;
// после maxAttempts попыток и для нечитаемых сообщений оно отбрасывается.
func (c *Client) StartConsumingAvatarCleanup(ctx context.Context, handler func(context.Context, payloads.AvatarCleanupPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("RabbitMQ channel closed, stopping consumer")
					return
				}
				c.handleDelivery(ctx, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.AvatarCleanupPayload) error) {
	var payload payloads.AvatarCleanupPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.Error("error unmarshalling message", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			c.logger.Error("error NACKing message after unmarshal failure", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		c.retry(ctx, msg, payload, err)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("error ACKing message", "error", err)
	}
}

func (c *Client) retry(ctx context.Context, msg amqp.Delivery, payload payloads.AvatarCleanupPayload, cause error) {
	attempt := deliveryAttempt(msg.Headers) + 1
	if attempt >= c.maxAttempts {
		c.logger.Error("giving up on avatar cleanup", "error", cause, "key", payload.Key, "attempts", attempt)
		if err := msg.Nack(false, false); err != nil {
			c.logger.Error("error NACKing message after last attempt", "error", err)
		}
		return
	}

	c.logger.Warn("avatar cleanup failed, retrying", "error", cause, "key", payload.Key, "attempt", attempt)

	timer := time.NewTimer(c.retryDelay * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("error NACKing message on shutdown", "error", err)
		}
		return
	}

	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[attemptHeader] = int32(attempt)

	err := c.publish(ctx, amqp.Publishing{
		Headers:      headers,
		ContentType:  msg.ContentType,
		DeliveryMode: amqp.Persistent,
		Body:         msg.Body,
	})
	if err != nil {
		c.logger.Error("error republishing avatar cleanup", "error", err, "key", payload.Key)
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("error NACKing message after republish failure", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("error ACKing retried message", "error", err)
	}
}

// deliveryAttempt читает номер попытки из заголовков; у нового сообщения он равен 0.
func deliveryAttempt(headers amqp.Table) int {
	switch v := headers[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
