package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ecommerce/internal/config"
	apperrors "ecommerce/internal/errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ConnState состояние подключения к брокеру
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Connection владеет единственным подключением и каналом к брокеру
// Канал общий для Publisher и Consumer переподключение выполняется
// под эксклюзивным замком чтение здорового канала замка не требует
type Connection struct {
	url string
	cfg config.RabbitMQConfig
	log *logrus.Entry

	mu     sync.RWMutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	state  ConnState
	closed bool
}

// NewConnection создает менеджер подключения без установки соединения
func NewConnection(url string, cfg config.RabbitMQConfig, log *logrus.Entry) *Connection {
	return &Connection{
		url:   url,
		cfg:   cfg,
		log:   log,
		state: StateDisconnected,
	}
}

// Connect устанавливает соединение при старте сервиса
// Исчерпание попыток фатально для запуска
func (c *Connection) Connect(ctx context.Context) error {
	_, err := c.Channel(ctx)
	return err
}

// State текущее состояние подключения
func (c *Connection) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Channel возвращает живой канал
// Здоровый канал отдается сразу иначе переподключаемся под замком
// конкурентные вызовы ждут одного переподключения и разделяют его результат
func (c *Connection) Channel(ctx context.Context) (*amqp.Channel, error) {
	c.mu.RLock()
	if c.healthy() {
		ch := c.ch
		c.mu.RUnlock()
		return ch, nil
	}
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return nil, apperrors.New(apperrors.ErrorTypeBroker, "connection manager is closed")
	}

	return c.reconnect(ctx)
}

// healthy проверяет что соединение и канал открыты
// Вызывается под c.mu
func (c *Connection) healthy() bool {
	return c.conn != nil && !c.conn.IsClosed() && c.ch != nil && !c.ch.IsClosed()
}

// reconnect рвет устаревшее подключение и устанавливает новое
// Выполняется под эксклюзивным замком одновременно идет только одна попытка
func (c *Connection) reconnect(ctx context.Context) (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, apperrors.New(apperrors.ErrorTypeBroker, "connection manager is closed")
	}

	// Пока ждали замок другой вызов мог уже переподключиться
	if c.healthy() {
		return c.ch, nil
	}

	c.state = StateConnecting
	c.cleanupLocked()

	conn, err := c.dialWithRetry(ctx)
	if err != nil {
		c.state = StateDisconnected
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		c.state = StateDisconnected
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeBroker, "could not open channel")
	}

	if err := c.declareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		c.state = StateDisconnected
		return nil, err
	}

	c.conn = conn
	c.ch = ch
	c.state = StateConnected

	c.log.WithFields(logrus.Fields{
		"exchange": c.cfg.Exchange,
		"queues":   len(c.cfg.Queues),
	}).Info("RabbitMQ connection established, topology declared")

	return ch, nil
}

// dialWithRetry ограниченное число попыток с фиксированной паузой
func (c *Connection) dialWithRetry(ctx context.Context) (*amqp.Connection, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.ConnectAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrorTypeBroker, "cancelled while connecting to broker")
		}

		conn, err := amqp.Dial(c.url)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		c.log.WithError(err).WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": c.cfg.ConnectAttempts,
		}).Warn("Failed to connect to RabbitMQ")

		if attempt == c.cfg.ConnectAttempts {
			break
		}

		select {
		case <-time.After(c.cfg.ConnectDelay):
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrorTypeBroker, "cancelled while connecting to broker")
		}
	}

	return nil, apperrors.Wrap(lastErr, apperrors.ErrorTypeBroker,
		fmt.Sprintf("could not connect to RabbitMQ after %d attempts", c.cfg.ConnectAttempts))
}

// topologyDeclarer поверхность канала нужная для объявления топологии
// *amqp.Channel реализует ее целиком
type topologyDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// declareTopology объявляет exchange очереди и привязки
// Объявления идемпотентны повторное объявление с теми же аргументами безопасно
// Очереди получают dead letter exchange отвергнутые сообщения паркуются там
func (c *Connection) declareTopology(ch topologyDeclarer) error {
	err := ch.ExchangeDeclare(
		c.cfg.Exchange,     // name
		c.cfg.ExchangeType, // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeBroker, "could not declare exchange")
	}

	dlxName := c.cfg.Exchange + ".dlx"
	dlqName := c.cfg.Exchange + ".dlq"

	if err := ch.ExchangeDeclare(dlxName, "fanout", true, false, false, false, nil); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeBroker, "could not declare dead letter exchange")
	}

	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeBroker, "could not declare dead letter queue")
	}

	if err := ch.QueueBind(dlqName, "", dlxName, false, nil); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeBroker, "could not bind dead letter queue")
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange": dlxName,
	}

	for _, queue := range c.cfg.Queues {
		if _, err := ch.QueueDeclare(
			queue.Name, // name
			true,       // durable
			false,      // delete when unused
			false,      // exclusive
			false,      // no-wait
			queueArgs,  // arguments
		); err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeBroker,
				fmt.Sprintf("could not declare queue %s", queue.Name))
		}

		for _, routingKey := range queue.RoutingKeys {
			if err := ch.QueueBind(queue.Name, routingKey, c.cfg.Exchange, false, nil); err != nil {
				return apperrors.Wrap(err, apperrors.ErrorTypeBroker,
					fmt.Sprintf("could not bind queue %s to %s", queue.Name, routingKey))
			}
		}
	}

	return nil
}

// cleanupLocked рвет устаревшие канал и соединение
// Ошибки закрытия глотаются это уборка по принципу лучших усилий
// Вызывается под c.mu
func (c *Connection) cleanupLocked() {
	if c.ch != nil {
		if !c.ch.IsClosed() {
			_ = c.ch.Close()
		}
		c.ch = nil
	}

	if c.conn != nil {
		if !c.conn.IsClosed() {
			_ = c.conn.Close()
		}
		c.conn = nil
	}
}

// Close закрывает канал затем соединение и освобождает ресурсы
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cleanupLocked()
	c.state = StateDisconnected

	c.log.Info("RabbitMQ connection closed")
	return nil
}
