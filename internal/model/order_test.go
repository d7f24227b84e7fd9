package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecalculateTotals(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{UnitPrice: 10, Quantity: 2},
			{UnitPrice: 5, Quantity: 1},
		},
	}

	order.RecalculateTotals()

	if order.Items[0].TotalPrice != 20 {
		t.Errorf("Expected first item total 20, got %.2f", order.Items[0].TotalPrice)
	}
	if order.Items[1].TotalPrice != 5 {
		t.Errorf("Expected second item total 5, got %.2f", order.Items[1].TotalPrice)
	}
	if order.TotalBill != 25 {
		t.Errorf("Expected total bill 25, got %.2f", order.TotalBill)
	}
}

func TestRecalculateTotals_EmptyOrder(t *testing.T) {
	order := &Order{TotalBill: 100}

	order.RecalculateTotals()

	if order.TotalBill != 0 {
		t.Errorf("Expected total bill 0 for empty order, got %.2f", order.TotalBill)
	}
}

func TestOrderAddRequest_ToOrder(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	orderDate := time.Now()

	req := &OrderAddRequest{
		UserID:    userID,
		OrderDate: orderDate,
		Items: []OrderItemAddRequest{
			{ProductID: productID, UnitPrice: 7.5, Quantity: 4},
		},
	}

	order := req.ToOrder()

	if order.OrderID == uuid.Nil {
		t.Error("Expected generated order id")
	}
	if order.UserID != userID {
		t.Errorf("Expected user id %s, got %s", userID, order.UserID)
	}
	if !order.OrderDate.Equal(orderDate) {
		t.Errorf("Expected order date %v, got %v", orderDate, order.OrderDate)
	}
	if len(order.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(order.Items))
	}
	if order.Items[0].ProductID != productID {
		t.Errorf("Expected product id %s, got %s", productID, order.Items[0].ProductID)
	}
	if order.Items[0].TotalPrice != 30 {
		t.Errorf("Expected item total 30, got %.2f", order.Items[0].TotalPrice)
	}
	if order.TotalBill != 30 {
		t.Errorf("Expected total bill 30, got %.2f", order.TotalBill)
	}
}
