package service

import (
	"context"
	"time"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/interfaces"
	"ecommerce/internal/model"
	"ecommerce/internal/rabbitmq"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductEventPublisher публикует события об изменениях товаров
type ProductEventPublisher interface {
	PublishProductNameUpdated(ctx context.Context, message rabbitmq.ProductNameUpdateMessage) error
	PublishProductDeleted(ctx context.Context, message rabbitmq.ProductDeletedMessage) error
}

// ProductsService бизнес-логика товаров
type ProductsService struct {
	repo      interfaces.ProductsRepository
	validator interfaces.RequestValidator
	publisher ProductEventPublisher
	log       *logrus.Entry
}

// NewProductsService создает сервис товаров
func NewProductsService(repo interfaces.ProductsRepository, validator interfaces.RequestValidator, publisher ProductEventPublisher, log *logrus.Entry) *ProductsService {
	return &ProductsService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		log:       log,
	}
}

// AddProduct проверяет запрос и сохраняет новый товар
func (s *ProductsService) AddProduct(ctx context.Context, req *model.ProductAddRequest) (*model.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		ProductID:       uuid.New(),
		ProductName:     req.ProductName,
		Category:        req.Category,
		UnitPrice:       req.UnitPrice,
		QuantityInStock: req.QuantityInStock,
	}
	if err := s.repo.AddProduct(ctx, product); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id":   product.ProductID,
		"product_name": product.ProductName,
	}).Info("Product created")

	return product, nil
}

// UpdateProduct обновляет товар. Если имя изменилось, после записи в БД
// публикуется событие ProductNameUpdated, чтобы потребители обновили кеши.
func (s *ProductsService) UpdateProduct(ctx context.Context, req *model.ProductUpdateRequest) (*model.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		ProductID:       req.ProductID,
		ProductName:     req.ProductName,
		Category:        req.Category,
		UnitPrice:       req.UnitPrice,
		QuantityInStock: req.QuantityInStock,
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	if existing.ProductName != product.ProductName {
		msg := rabbitmq.ProductNameUpdateMessage{
			ProductID:      product.ProductID,
			NewProductName: product.ProductName,
			PublishedAt:    time.Now().UTC(),
		}
		// Событие вторично относительно записи: БД уже обновлена,
		// поэтому ошибку публикации только логируем
		if err := s.publisher.PublishProductNameUpdated(ctx, msg); err != nil {
			s.log.WithError(err).WithField("product_id", product.ProductID).
				Error("Failed to publish product name update event")
		}
	}

	s.log.WithField("product_id", product.ProductID).Info("Product updated")
	return product, nil
}

// DeleteProduct удаляет товар и публикует событие ProductDeleted
func (s *ProductsService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return apperrors.New(apperrors.ErrorTypeValidation, "product id is empty")
	}

	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}

	msg := rabbitmq.ProductDeletedMessage{
		ProductID:   productID,
		PublishedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishProductDeleted(ctx, msg); err != nil {
		s.log.WithError(err).WithField("product_id", productID).
			Error("Failed to publish product deleted event")
	}

	s.log.WithField("product_id", productID).Info("Product deleted")
	return nil
}

// GetProductByID возвращает товар по идентификатору
func (s *ProductsService) GetProductByID(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	if productID == uuid.Nil {
		return nil, apperrors.New(apperrors.ErrorTypeValidation, "product id is empty")
	}
	return s.repo.GetProductByID(ctx, productID)
}

// ListProducts возвращает все товары
func (s *ProductsService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return s.repo.ListProducts(ctx)
}
