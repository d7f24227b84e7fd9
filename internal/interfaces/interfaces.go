package interfaces

import (
	"context"

	"ecommerce/internal/model"

	"github.com/google/uuid"
)

// OrdersRepository интерфейс для работы с заказами в БД
type OrdersRepository interface {
	AddOrder(ctx context.Context, order *model.Order) error
	UpdateOrder(ctx context.Context, order *model.Order) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Order, error)
	Close()
}

// ProductsRepository интерфейс для работы с товарами в БД
type ProductsRepository interface {
	AddProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProductByID(ctx context.Context, productID uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
	Close()
}

// UsersRepository интерфейс для работы с пользователями в БД
type UsersRepository interface {
	AddUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	Close()
}

// RequestValidator интерфейс для валидации входящих запросов
type RequestValidator interface {
	Validate(request interface{}) error
}
