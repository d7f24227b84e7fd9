package model

import (
	"github.com/google/uuid"
)

// Product товар из сервиса Products
type Product struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Category        string    `json:"category"`
	UnitPrice       float64   `json:"unit_price"`
	QuantityInStock int       `json:"quantity_in_stock"`
}

// ProductAddRequest запрос на создание товара
type ProductAddRequest struct {
	ProductName     string  `json:"product_name" validate:"required,min=1,max=200"`
	Category        string  `json:"category" validate:"required,min=1,max=100"`
	UnitPrice       float64 `json:"unit_price" validate:"required,gt=0,lte=100000"`
	QuantityInStock int     `json:"quantity_in_stock" validate:"min=0"`
}

// ProductUpdateRequest запрос на изменение товара
type ProductUpdateRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	ProductName     string    `json:"product_name" validate:"required,min=1,max=200"`
	Category        string    `json:"category" validate:"required,min=1,max=100"`
	UnitPrice       float64   `json:"unit_price" validate:"required,gt=0,lte=100000"`
	QuantityInStock int       `json:"quantity_in_stock" validate:"min=0"`
}
