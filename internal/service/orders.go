package service

import (
	"context"
	"fmt"

	"ecommerce/internal/enrichment"
	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/interfaces"
	"ecommerce/internal/model"
	"ecommerce/internal/resilience"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrderEnricher дополняет заказы данными товаров и покупателя
type OrderEnricher interface {
	EnrichOrder(ctx context.Context, order *model.Order)
	EnrichOrders(ctx context.Context, orders []*model.Order)
}

// OrdersService бизнес-логика заказов
type OrdersService struct {
	repo      interfaces.OrdersRepository
	validator interfaces.RequestValidator
	products  enrichment.ProductLookup
	users     enrichment.UserLookup
	enricher  OrderEnricher
	log       *logrus.Entry
}

// NewOrdersService создает сервис заказов
func NewOrdersService(repo interfaces.OrdersRepository, validator interfaces.RequestValidator, products enrichment.ProductLookup, users enrichment.UserLookup, enricher OrderEnricher, log *logrus.Entry) *OrdersService {
	return &OrdersService{
		repo:      repo,
		validator: validator,
		products:  products,
		users:     users,
		enricher:  enricher,
		log:       log,
	}
}

// verifyReferences проверяет что покупатель и все товары заказа существуют
// Отклоняется только подтвержденное отсутствие деградированный или
// сбойный ответ зависимости не блокирует заказ доступность важнее
// строгой проверки
func (s *OrdersService) verifyReferences(ctx context.Context, order *model.Order) error {
	outcome := s.users.GetByID(ctx, order.UserID)
	switch outcome.Kind {
	case resilience.KindNotFound:
		return apperrors.NewWithCode(apperrors.ErrorTypeValidation,
			fmt.Sprintf("user %s does not exist", order.UserID), "UNKNOWN_USER")
	case resilience.KindOK:
	default:
		s.log.WithError(outcome.Err).WithField("user_id", order.UserID).
			Warn("User verification skipped, dependency unavailable")
	}

	seen := make(map[uuid.UUID]bool, len(order.Items))
	for _, item := range order.Items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		outcome := s.products.GetByID(ctx, item.ProductID)
		switch outcome.Kind {
		case resilience.KindNotFound:
			return apperrors.NewWithCode(apperrors.ErrorTypeValidation,
				fmt.Sprintf("product %s does not exist", item.ProductID), "UNKNOWN_PRODUCT")
		case resilience.KindOK:
		default:
			s.log.WithError(outcome.Err).WithField("product_id", item.ProductID).
				Warn("Product verification skipped, dependency unavailable")
		}
	}

	return nil
}

// AddOrder проверяет запрос, считает итоги и сохраняет заказ
func (s *OrdersService) AddOrder(ctx context.Context, req *model.OrderAddRequest) (*model.Order, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	order := req.ToOrder()
	if err := s.verifyReferences(ctx, order); err != nil {
		return nil, err
	}

	if err := s.repo.AddOrder(ctx, order); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   order.OrderID,
		"user_id":    order.UserID,
		"total_bill": order.TotalBill,
	}).Info("Order created")

	return order, nil
}

// UpdateOrder проверяет запрос и перезаписывает заказ с пересчетом итогов
func (s *OrdersService) UpdateOrder(ctx context.Context, req *model.OrderUpdateRequest) (*model.Order, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderID:   req.OrderID,
		UserID:    req.UserID,
		OrderDate: req.OrderDate,
		Items:     make([]model.OrderItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	order.RecalculateTotals()

	if err := s.verifyReferences(ctx, order); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.log.WithField("order_id", order.OrderID).Info("Order updated")
	return order, nil
}

// DeleteOrder удаляет заказ
func (s *OrdersService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return apperrors.New(apperrors.ErrorTypeValidation, "order id is empty")
	}
	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	s.log.WithField("order_id", orderID).Info("Order deleted")
	return nil
}

// GetOrderByID возвращает заказ, обогащенный данными товаров и покупателя.
// Сбои зависимостей не валят запрос: заказ отдается с тем, что удалось собрать.
func (s *OrdersService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	if orderID == uuid.Nil {
		return nil, apperrors.New(apperrors.ErrorTypeValidation, "order id is empty")
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.enricher.EnrichOrder(ctx, order)
	return order, nil
}

// GetOrdersByUserID возвращает обогащенные заказы пользователя
func (s *OrdersService) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.ErrorTypeValidation, "user id is empty")
	}

	orders, err := s.repo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.enricher.EnrichOrders(ctx, orders)
	return orders, nil
}
