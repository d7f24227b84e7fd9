package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"ecommerce/internal/config"
	"ecommerce/internal/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// HandlerFunc обработчик одного сообщения с известным ключом маршрутизации
type HandlerFunc func(ctx context.Context, body []byte) error

// Consumer вычитывает привязанные очереди по одному сообщению за раз
// Prefetch ограничивает число неподтвержденных сообщений в полете
// это backpressure в сторону брокера
type Consumer struct {
	conn     *Connection
	queues   []config.QueueConfig
	prefetch int
	handlers map[string]HandlerFunc
	metrics  *metrics.Metrics
	log      *logrus.Entry
}

// NewConsumer создает consumer без запуска
func NewConsumer(conn *Connection, queues []config.QueueConfig, prefetch int, m *metrics.Metrics, log *logrus.Entry) *Consumer {
	return &Consumer{
		conn:     conn,
		queues:   queues,
		prefetch: prefetch,
		handlers: make(map[string]HandlerFunc),
		metrics:  m,
		log:      log,
	}
}

// Handle регистрирует обработчик для ключа маршрутизации
// Диспетчеризация по ключу закрытый набор неизвестные ключи подтверждаются без обработки
func (c *Consumer) Handle(routingKey string, handler HandlerFunc) {
	c.handlers[routingKey] = handler
}

// Run крутит цикл потребления до отмены контекста
// Потеря канала в устоявшемся режиме не фатальна переподписываемся заново
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := c.consumeOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.log.WithError(err).Warn("Consumer lost channel, resubscribing")
	}
}

// consumeOnce подписывается на все очереди через текущий канал
// и обрабатывает поставки пока канал жив или не отменен контекст
func (c *Consumer) consumeOnce(ctx context.Context) error {
	ch, err := c.conn.Channel(ctx)
	if err != nil {
		return err
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("could not set QoS prefetch: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"prefetch": c.prefetch,
		"queues":   len(c.queues),
	}).Info("Consumer subscribed")

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(c.queues))

	for _, queue := range c.queues {
		deliveries, err := ch.ConsumeWithContext(
			consumeCtx,
			queue.Name, // queue
			"",         // consumer tag
			false,      // auto-ack
			false,      // exclusive
			false,      // no-local
			false,      // no-wait
			nil,        // args
		)
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("could not start consuming queue %s: %w", queue.Name, err)
		}

		wg.Add(1)
		go func(queueName string, deliveries <-chan amqp.Delivery) {
			defer wg.Done()
			if err := c.drain(consumeCtx, queueName, deliveries); err != nil {
				errCh <- err
				cancel()
			}
		}(queue.Name, deliveries)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return ctx.Err()
	}
}

// drain обрабатывает поставки одной очереди до отмены или потери канала
// Остановка по запросу новых поставок не берет обработка текущего
// сообщения завершается синхронно и подтверждается перед возвратом
func (c *Consumer) drain(ctx context.Context, queueName string, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for queue %s closed", queueName)
			}
			c.process(ctx, queueName, d)
		}
	}
}

// process обрабатывает одно сообщение и подтверждает его
// Любая ошибка обработчика дает nack без requeue иначе ядовитое
// сообщение крутилось бы в очереди бесконечно брокер паркует его в DLQ
func (c *Consumer) process(ctx context.Context, queueName string, d amqp.Delivery) {
	entry := c.log.WithFields(logrus.Fields{
		"queue":        queueName,
		"routing_key":  d.RoutingKey,
		"delivery_tag": d.DeliveryTag,
	})

	defer func() {
		if r := recover(); r != nil {
			entry.WithField("panic", r).Error("Handler panicked, rejecting message")
			c.reject(queueName, "panic")
			c.nack(entry, d)
		}
	}()

	handler, ok := c.handlers[d.RoutingKey]
	if !ok {
		// Неизвестный ключ это не ошибка forward-compatible no-op
		entry.Warn("Unknown routing key, acknowledging without processing")
		c.ack(entry, d)
		return
	}

	if err := handler(ctx, d.Body); err != nil {
		entry.WithError(err).Error("Message handling failed, rejecting without requeue")
		c.reject(queueName, "handler_error")
		c.nack(entry, d)
		return
	}

	if c.metrics != nil {
		c.metrics.BrokerMessagesConsumed.WithLabelValues(queueName, d.RoutingKey).Inc()
	}
	c.ack(entry, d)
}

func (c *Consumer) reject(queueName, reason string) {
	if c.metrics != nil {
		c.metrics.BrokerMessagesRejected.WithLabelValues(queueName, reason).Inc()
	}
}

func (c *Consumer) ack(entry *logrus.Entry, d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		entry.WithError(err).Error("Failed to ack message")
	}
}

func (c *Consumer) nack(entry *logrus.Entry, d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		entry.WithError(err).Error("Failed to nack message")
	}
}
