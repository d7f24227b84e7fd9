package rabbitmq

import (
	"fmt"
	"testing"

	"ecommerce/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeTopologyChannel запоминает объявления и как брокер отвергает
// повторное объявление с другими аргументами
type fakeTopologyChannel struct {
	exchanges map[string]string
	queues    map[string]string
	bindings  map[string]bool
}

func newFakeTopologyChannel() *fakeTopologyChannel {
	return &fakeTopologyChannel{
		exchanges: make(map[string]string),
		queues:    make(map[string]string),
		bindings:  make(map[string]bool),
	}
}

func (f *fakeTopologyChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if existing, ok := f.exchanges[name]; ok && existing != kind {
		return fmt.Errorf("PRECONDITION_FAILED - inequivalent arg 'type' for exchange '%s'", name)
	}
	f.exchanges[name] = kind
	return nil
}

func (f *fakeTopologyChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	dlx, _ := args["x-dead-letter-exchange"].(string)
	if existing, ok := f.queues[name]; ok && existing != dlx {
		return amqp.Queue{}, fmt.Errorf("PRECONDITION_FAILED - inequivalent arg 'x-dead-letter-exchange' for queue '%s'", name)
	}
	f.queues[name] = dlx
	return amqp.Queue{Name: name}, nil
}

func (f *fakeTopologyChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.bindings[name+"|"+key+"|"+exchange] = true
	return nil
}

func testTopologyConfig() config.RabbitMQConfig {
	return config.RabbitMQConfig{
		Exchange:     "ecommerce.products",
		ExchangeType: "topic",
		Queues: []config.QueueConfig{
			{Name: "orders-product-events", RoutingKeys: []string{RoutingKeyProductNameUpdated, RoutingKeyProductDeleted}},
		},
	}
}

func TestConnection_DeclareTopology(t *testing.T) {
	conn := NewConnection("amqp://localhost", testTopologyConfig(), testBrokerLog())
	ch := newFakeTopologyChannel()

	if err := conn.declareTopology(ch); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if kind := ch.exchanges["ecommerce.products"]; kind != "topic" {
		t.Errorf("Expected topic exchange, got '%s'", kind)
	}
	if kind := ch.exchanges["ecommerce.products.dlx"]; kind != "fanout" {
		t.Errorf("Expected fanout dead letter exchange, got '%s'", kind)
	}
	if _, ok := ch.queues["ecommerce.products.dlq"]; !ok {
		t.Error("Expected dead letter queue declared")
	}
	if dlx := ch.queues["orders-product-events"]; dlx != "ecommerce.products.dlx" {
		t.Errorf("Expected queue bound to dead letter exchange, got '%s'", dlx)
	}
	for _, binding := range []string{
		"orders-product-events|" + RoutingKeyProductNameUpdated + "|ecommerce.products",
		"orders-product-events|" + RoutingKeyProductDeleted + "|ecommerce.products",
		"ecommerce.products.dlq||ecommerce.products.dlx",
	} {
		if !ch.bindings[binding] {
			t.Errorf("Expected binding %s", binding)
		}
	}
}

func TestConnection_DeclareTopologyIsIdempotent(t *testing.T) {
	conn := NewConnection("amqp://localhost", testTopologyConfig(), testBrokerLog())
	ch := newFakeTopologyChannel()

	if err := conn.declareTopology(ch); err != nil {
		t.Fatalf("Unexpected error on first declaration: %v", err)
	}
	// Переподключение объявляет ту же топологию заново
	if err := conn.declareTopology(ch); err != nil {
		t.Fatalf("Redeclaration with identical arguments must succeed, got %v", err)
	}

	if len(ch.exchanges) != 2 {
		t.Errorf("Expected 2 exchanges, got %d", len(ch.exchanges))
	}
	if len(ch.queues) != 2 {
		t.Errorf("Expected 2 queues, got %d", len(ch.queues))
	}
}
