package rabbitmq

import (
	"time"

	"github.com/google/uuid"
)

// Имена маршрутов публикации и ключи маршрутизации продуктовых событий
const (
	RouteProductNameUpdated = "ProductNameUpdated"
	RouteProductDeleted     = "ProductDeleted"

	RoutingKeyProductNameUpdated = "product.name.updated"
	// RoutingKeyProductNameUpdatedAlias старый ключ оставлен для совместимости
	// с публикациями прежних версий сервиса Products
	RoutingKeyProductNameUpdatedAlias = "product.updated.name"
	RoutingKeyProductDeleted          = "product.deleted"
)

// ProductNameUpdateMessage событие переименования товара
// Имена полей на проводе совпадают с контрактом сервиса Products
// десериализация не чувствительна к регистру
type ProductNameUpdateMessage struct {
	ProductID      uuid.UUID `json:"ProductId"`
	NewProductName string    `json:"NewProductName"`
	PublishedAt    time.Time `json:"PublishedAt"`
}

// ProductDeletedMessage событие удаления товара
type ProductDeletedMessage struct {
	ProductID   uuid.UUID `json:"ProductId"`
	PublishedAt time.Time `json:"PublishedAt"`
}
