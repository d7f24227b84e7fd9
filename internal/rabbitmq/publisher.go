package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/metrics"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher публикует доменные события в exchange брокера
// Живой канал запрашивается у менеджера перед каждой публикацией
// канал мог быть пересоздан с прошлого раза кешировать его нельзя
type Publisher struct {
	conn     *Connection
	exchange string
	routes   map[string]string
	metrics  *metrics.Metrics
	log      *logrus.Entry
}

// NewPublisher создает publisher со статической таблицей маршрутов
func NewPublisher(conn *Connection, exchange string, m *metrics.Metrics, log *logrus.Entry) *Publisher {
	return &Publisher{
		conn:     conn,
		exchange: exchange,
		routes: map[string]string{
			RouteProductNameUpdated: RoutingKeyProductNameUpdated,
			RouteProductDeleted:     RoutingKeyProductDeleted,
		},
		metrics: m,
		log:     log,
	}
}

// Publish сериализует событие и отправляет его по имени маршрута
// Незарегистрированный маршрут это ошибка до публикации fail fast
func (p *Publisher) Publish(ctx context.Context, routeName string, message interface{}) error {
	routingKey, ok := p.routes[routeName]
	if !ok {
		return apperrors.NewWithCode(apperrors.ErrorTypeBroker,
			fmt.Sprintf("unknown route %q", routeName), "UNKNOWN_ROUTE")
	}

	body, err := json.Marshal(message)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeBroker, "could not marshal message")
	}

	ch, err := p.conn.Channel(ctx)
	if err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"exchange":    p.exchange,
		"routing_key": routingKey,
	}).Info("Publishing message")

	err = ch.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Body:         body,
		},
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeBroker, "could not publish message")
	}

	if p.metrics != nil {
		p.metrics.BrokerMessagesPublished.WithLabelValues(p.exchange, routingKey).Inc()
	}

	return nil
}

// PublishProductNameUpdated публикует событие переименования товара
func (p *Publisher) PublishProductNameUpdated(ctx context.Context, message ProductNameUpdateMessage) error {
	return p.Publish(ctx, RouteProductNameUpdated, message)
}

// PublishProductDeleted публикует событие удаления товара
func (p *Publisher) PublishProductDeleted(ctx context.Context, message ProductDeletedMessage) error {
	return p.Publish(ctx, RouteProductDeleted, message)
}
