package enrichment

import (
	"context"

	"ecommerce/internal/model"
	"ecommerce/internal/resilience"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductLookup источник данных о товарах
type ProductLookup interface {
	GetByID(ctx context.Context, productID uuid.UUID) resilience.Outcome
}

// UserLookup источник данных о пользователях
type UserLookup interface {
	GetByID(ctx context.Context, userID uuid.UUID) resilience.Outcome
}

// Enricher заполняет отображаемые поля заказа данными из Products и Users
// Обогащение это декорация по принципу лучших усилий not found или сбой
// одной позиции не валит весь заказ позиция остается без обогащения
type Enricher struct {
	products ProductLookup
	users    UserLookup
	log      *logrus.Entry
}

// New создает enricher
func New(products ProductLookup, users UserLookup, log *logrus.Entry) *Enricher {
	return &Enricher{
		products: products,
		users:    users,
		log:      log,
	}
}

// EnrichOrders обогащает несколько заказов
func (e *Enricher) EnrichOrders(ctx context.Context, orders []*model.Order) {
	for _, order := range orders {
		if order == nil {
			continue
		}
		e.EnrichOrder(ctx, order)
	}
}

// EnrichOrder обогащает один заказ
// Покупатель запрашивается один раз на заказ товары по одному на позицию
// Позиции обходятся последовательно результат привязывается к своей позиции
func (e *Enricher) EnrichOrder(ctx context.Context, order *model.Order) {
	if order == nil {
		return
	}

	e.enrichBuyer(ctx, order)

	for i := range order.Items {
		e.enrichItem(ctx, order, &order.Items[i])
	}
}

// enrichBuyer заполняет имя и почту покупателя
func (e *Enricher) enrichBuyer(ctx context.Context, order *model.Order) {
	outcome := e.users.GetByID(ctx, order.UserID)

	switch outcome.Kind {
	case resilience.KindOK:
		user := outcome.Value.(*model.User)
		order.UserPersonName = user.PersonName
		order.UserEmail = user.Email
	case resilience.KindNotFound:
		// Пользователя нет оставляем поля пустыми
	default:
		e.log.WithError(outcome.Err).WithFields(logrus.Fields{
			"order_id": order.OrderID,
			"user_id":  order.UserID,
		}).Warn("User enrichment skipped")
	}
}

// enrichItem заполняет имя и категорию товара позиции
// Деградированный ответ тоже применяется покупатель видит
// явно помеченную заглушку а не пустоту
func (e *Enricher) enrichItem(ctx context.Context, order *model.Order, item *model.OrderItem) {
	outcome := e.products.GetByID(ctx, item.ProductID)

	switch outcome.Kind {
	case resilience.KindOK, resilience.KindDegraded:
		product := outcome.Value.(*model.Product)
		item.ProductName = product.ProductName
		item.Category = product.Category
	case resilience.KindNotFound:
		// Товара нет позиция остается без обогащения
	default:
		e.log.WithError(outcome.Err).WithFields(logrus.Fields{
			"order_id":   order.OrderID,
			"product_id": item.ProductID,
		}).Warn("Product enrichment skipped")
	}
}
