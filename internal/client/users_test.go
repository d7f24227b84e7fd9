package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ecommerce/internal/cache"
	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/model"
	"ecommerce/internal/resilience"

	"github.com/google/uuid"
)

func newUsersTestClient(t *testing.T, handler http.HandlerFunc) (*UsersClient, *cache.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := cache.NewStore(time.Minute)
	t.Cleanup(store.Stop)

	c := NewUsersClient(server.URL, testPolicy(), testCacheCfg(), store, nil, testLog())
	return c, store
}

func TestUsersClient_GetByID(t *testing.T) {
	userID := uuid.New()
	var calls int32

	c, _ := newUsersTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/api/users/"+userID.String() {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(model.User{
			UserID:     userID,
			Email:      "user@example.com",
			PersonName: "Ivan Petrov",
			Gender:     "male",
		})
	})

	outcome := c.GetByID(context.Background(), userID)
	if outcome.Kind != resilience.KindOK {
		t.Fatalf("Expected OK outcome, got %s (%v)", outcome.Kind, outcome.Err)
	}

	user := outcome.Value.(*model.User)
	if user.PersonName != "Ivan Petrov" {
		t.Errorf("Expected 'Ivan Petrov', got '%s'", user.PersonName)
	}

	// Повторный вызов из кеша
	c.GetByID(context.Background(), userID)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 network call, got %d", got)
	}
}

func TestUsersClient_NotFound(t *testing.T) {
	c, store := newUsersTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	outcome := c.GetByID(context.Background(), uuid.New())
	if outcome.Kind != resilience.KindNotFound {
		t.Fatalf("Expected not found outcome, got %s", outcome.Kind)
	}
	if store.Size() != 0 {
		t.Error("Expected not found responses not to be cached")
	}
}

func TestUsersClient_NoFallback(t *testing.T) {
	// У Users нет fallback слоя недоступность отдается как сбой
	c, _ := newUsersTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	outcome := c.GetByID(context.Background(), uuid.New())
	if !outcome.IsFailure() {
		t.Fatalf("Expected failure outcome, got %s", outcome.Kind)
	}
	if !apperrors.IsType(outcome.Err, apperrors.ErrorTypeOverload) {
		t.Errorf("Expected overload error type, got %v", outcome.Err)
	}
}

func TestUsersClient_OpenBreakerFailsFast(t *testing.T) {
	var calls int32

	c, _ := newUsersTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	c.GetByID(context.Background(), uuid.New())
	c.GetByID(context.Background(), uuid.New())

	before := atomic.LoadInt32(&calls)

	outcome := c.GetByID(context.Background(), uuid.New())
	if !outcome.IsFailure() {
		t.Fatalf("Expected failure with open breaker, got %s", outcome.Kind)
	}
	if !apperrors.IsType(outcome.Err, apperrors.ErrorTypeCircuitOpen) {
		t.Errorf("Expected circuit open error type, got %v", outcome.Err)
	}
	if got := atomic.LoadInt32(&calls); got != before {
		t.Errorf("Expected no network call with open breaker, got %d extra", got-before)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status  int
		errType apperrors.ErrorType
		code    string
	}{
		{http.StatusBadRequest, apperrors.ErrorTypeValidation, "DEPENDENCY_BAD_REQUEST"},
		{http.StatusServiceUnavailable, apperrors.ErrorTypeOverload, "DEPENDENCY_OVERLOADED"},
		{http.StatusRequestTimeout, apperrors.ErrorTypeTransient, "DEPENDENCY_UNAVAILABLE"},
		{http.StatusTooManyRequests, apperrors.ErrorTypeTransient, "DEPENDENCY_UNAVAILABLE"},
		{http.StatusInternalServerError, apperrors.ErrorTypeTransient, "DEPENDENCY_UNAVAILABLE"},
		{http.StatusBadGateway, apperrors.ErrorTypeTransient, "DEPENDENCY_UNAVAILABLE"},
		{http.StatusTeapot, apperrors.ErrorTypeTransient, "DEPENDENCY_UNEXPECTED_STATUS"},
	}

	for _, tt := range tests {
		appErr := classifyStatus(tt.status)
		if appErr == nil {
			t.Errorf("Status %d: expected error, got nil", tt.status)
			continue
		}
		if appErr.Type != tt.errType {
			t.Errorf("Status %d: expected type %s, got %s", tt.status, tt.errType, appErr.Type)
		}
		if appErr.Code != tt.code {
			t.Errorf("Status %d: expected code %s, got %s", tt.status, tt.code, appErr.Code)
		}
	}
}
