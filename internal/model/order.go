package model

import (
	"time"

	"github.com/google/uuid"
)

// Order заказ с позициями
// Поля ProductName Category UserPersonName UserEmail заполняются обогащением
// из микросервисов Products и Users и в БД не хранятся
type Order struct {
	OrderID   uuid.UUID   `json:"order_id"`
	UserID    uuid.UUID   `json:"user_id"`
	OrderDate time.Time   `json:"order_date"`
	TotalBill float64     `json:"total_bill"`
	Items     []OrderItem `json:"items"`

	// Обогащаемые поля покупателя
	UserPersonName string `json:"user_person_name,omitempty"`
	UserEmail      string `json:"user_email,omitempty"`
}

// OrderItem позиция заказа
type OrderItem struct {
	ProductID  uuid.UUID `json:"product_id"`
	UnitPrice  float64   `json:"unit_price"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`

	// Обогащаемые поля товара
	ProductName string `json:"product_name,omitempty"`
	Category    string `json:"category,omitempty"`
}

// RecalculateTotals пересчитывает стоимость позиций и итог заказа
// Вызывается при каждом добавлении или изменении заказа
func (o *Order) RecalculateTotals() {
	var total float64
	for i := range o.Items {
		o.Items[i].TotalPrice = float64(o.Items[i].Quantity) * o.Items[i].UnitPrice
		total += o.Items[i].TotalPrice
	}
	o.TotalBill = total
}

// OrderAddRequest запрос на создание заказа
type OrderAddRequest struct {
	UserID    uuid.UUID             `json:"user_id" validate:"required"`
	OrderDate time.Time             `json:"order_date" validate:"required"`
	Items     []OrderItemAddRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// OrderItemAddRequest позиция в запросе на создание заказа
type OrderItemAddRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	UnitPrice float64   `json:"unit_price" validate:"required,gt=0,lte=100000"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=1000"`
}

// OrderUpdateRequest запрос на изменение заказа
type OrderUpdateRequest struct {
	OrderID   uuid.UUID             `json:"order_id" validate:"required"`
	UserID    uuid.UUID             `json:"user_id" validate:"required"`
	OrderDate time.Time             `json:"order_date" validate:"required"`
	Items     []OrderItemAddRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// ToOrder собирает заказ из запроса и считает итоги
func (r *OrderAddRequest) ToOrder() *Order {
	order := &Order{
		OrderID:   uuid.New(),
		UserID:    r.UserID,
		OrderDate: r.OrderDate,
		Items:     make([]OrderItem, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, OrderItem{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	order.RecalculateTotals()
	return order
}
