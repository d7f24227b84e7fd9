package main

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"ecommerce/internal/cache"
	"ecommerce/internal/config"
	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/logger"
	"ecommerce/internal/model"

	"github.com/google/uuid"
)

func newTestHandler(t *testing.T) (*MessageHandler, *cache.Store) {
	t.Helper()

	store := cache.NewStore(time.Minute)
	t.Cleanup(store.Stop)

	app := &App{
		Config: &config.Config{
			Cache: config.CacheConfig{
				ProductTTL:        time.Minute,
				ProductSlidingTTL: time.Minute,
			},
		},
		Log:   logger.New(logger.Config{Level: "panic", Format: "json"}),
		Cache: store,
	}

	return NewMessageHandler(app), store
}

func TestHandleProductNameUpdated_RefreshesCachedProduct(t *testing.T) {
	handler, store := newTestHandler(t)

	productID := uuid.New()
	key := cache.ProductKey(productID)
	store.SetJSON(key, &model.Product{
		ProductID:   productID,
		ProductName: "Old Name",
		Category:    "Tools",
		UnitPrice:   9.99,
	}, time.Minute, time.Minute)

	body := fmt.Sprintf(`{"ProductId":"%s","NewProductName":"New Name","PublishedAt":"2026-08-29T10:00:00Z"}`, productID)

	if err := handler.HandleProductNameUpdated(context.Background(), []byte(body)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var product model.Product
	if !store.GetJSON(key, &product) {
		t.Fatal("Expected product to stay cached")
	}
	if product.ProductName != "New Name" {
		t.Errorf("Expected refreshed name, got '%s'", product.ProductName)
	}
	// Остальные поля сохраняются
	if product.Category != "Tools" || product.UnitPrice != 9.99 {
		t.Errorf("Expected other fields untouched, got %+v", product)
	}
}

func TestHandleProductNameUpdated_NotCachedIsNoop(t *testing.T) {
	handler, store := newTestHandler(t)

	body, _ := json.Marshal(map[string]interface{}{
		"ProductId":      uuid.New(),
		"NewProductName": "New Name",
	})

	if err := handler.HandleProductNameUpdated(context.Background(), body); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.Size() != 0 {
		t.Error("Expected cache to stay empty for unknown product")
	}
}

func TestHandleProductNameUpdated_MalformedPayload(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{broken`},
		{"missing product id", `{"NewProductName":"New Name"}`},
		{"missing name", fmt.Sprintf(`{"ProductId":"%s"}`, uuid.New())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler.HandleProductNameUpdated(context.Background(), []byte(tt.body))
			if err == nil {
				t.Fatal("Expected error for malformed payload")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error type, got %v", err)
			}
		})
	}
}

func TestHandleProductDeleted_InvalidatesCache(t *testing.T) {
	handler, store := newTestHandler(t)

	productID := uuid.New()
	key := cache.ProductKey(productID)
	store.SetJSON(key, &model.Product{ProductID: productID, ProductName: "Widget"}, time.Minute, time.Minute)

	body := fmt.Sprintf(`{"ProductId":"%s","PublishedAt":"2026-08-29T10:00:00Z"}`, productID)

	if err := handler.HandleProductDeleted(context.Background(), []byte(body)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var product model.Product
	if store.GetJSON(key, &product) {
		t.Error("Expected product to be evicted from cache")
	}
}

func TestHandleProductDeleted_MalformedPayload(t *testing.T) {
	handler, _ := newTestHandler(t)

	for _, body := range []string{`{broken`, `{}`} {
		err := handler.HandleProductDeleted(context.Background(), []byte(body))
		if err == nil {
			t.Fatalf("Expected error for payload %q", body)
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			t.Errorf("Expected validation error type, got %v", err)
		}
	}
}
