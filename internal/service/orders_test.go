package service

import (
	"context"
	"testing"
	"time"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/model"
	"ecommerce/internal/resilience"

	"github.com/google/uuid"
)

// fakeLookup отвечает заготовленным исходом по id, остальным fallback-ом
type fakeLookup struct {
	outcomes map[uuid.UUID]resilience.Outcome
	fallback resilience.Outcome
	calls    int
}

func allowAll() *fakeLookup {
	return &fakeLookup{fallback: resilience.OK(nil)}
}

func (f *fakeLookup) GetByID(ctx context.Context, id uuid.UUID) resilience.Outcome {
	f.calls++
	if outcome, ok := f.outcomes[id]; ok {
		return outcome
	}
	return f.fallback
}

type fakeOrdersRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (f *fakeOrdersRepo) AddOrder(ctx context.Context, order *model.Order) error {
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakeOrdersRepo) UpdateOrder(ctx context.Context, order *model.Order) error {
	if _, ok := f.orders[order.OrderID]; !ok {
		return apperrors.ErrOrderNotFound
	}
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakeOrdersRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if _, ok := f.orders[orderID]; !ok {
		return apperrors.ErrOrderNotFound
	}
	delete(f.orders, orderID)
	return nil
}

func (f *fakeOrdersRepo) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrdersRepo) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	var result []*model.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}
	return result, nil
}

func (f *fakeOrdersRepo) Close() {}

type fakeEnricher struct {
	singleCalls int
	batchCalls  int
}

func (f *fakeEnricher) EnrichOrder(ctx context.Context, order *model.Order) {
	f.singleCalls++
	order.UserPersonName = "Enriched Name"
}

func (f *fakeEnricher) EnrichOrders(ctx context.Context, orders []*model.Order) {
	f.batchCalls++
	for _, order := range orders {
		order.UserPersonName = "Enriched Name"
	}
}

func TestOrdersService_AddOrder_CalculatesTotals(t *testing.T) {
	repo := newFakeOrdersRepo()
	svc := NewOrdersService(repo, &fakeValidator{}, allowAll(), allowAll(), &fakeEnricher{}, testServiceLog())

	order, err := svc.AddOrder(context.Background(), &model.OrderAddRequest{
		UserID:    uuid.New(),
		OrderDate: time.Now(),
		Items: []model.OrderItemAddRequest{
			{ProductID: uuid.New(), UnitPrice: 10, Quantity: 2},
			{ProductID: uuid.New(), UnitPrice: 5, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if order.TotalBill != 25 {
		t.Errorf("Expected total bill 25, got %.2f", order.TotalBill)
	}
	if _, ok := repo.orders[order.OrderID]; !ok {
		t.Error("Expected order saved to repository")
	}
}

func TestOrdersService_AddOrder_ValidationError(t *testing.T) {
	validationErr := apperrors.New(apperrors.ErrorTypeValidation, "bad request")
	svc := NewOrdersService(newFakeOrdersRepo(), &fakeValidator{err: validationErr}, allowAll(), allowAll(), &fakeEnricher{}, testServiceLog())

	if _, err := svc.AddOrder(context.Background(), &model.OrderAddRequest{}); err == nil {
		t.Fatal("Expected validation error")
	}
}

func TestOrdersService_UpdateOrder_RecalculatesTotals(t *testing.T) {
	orderID := uuid.New()
	repo := newFakeOrdersRepo()
	repo.orders[orderID] = &model.Order{OrderID: orderID, TotalBill: 100}

	svc := NewOrdersService(repo, &fakeValidator{}, allowAll(), allowAll(), &fakeEnricher{}, testServiceLog())

	order, err := svc.UpdateOrder(context.Background(), &model.OrderUpdateRequest{
		OrderID:   orderID,
		UserID:    uuid.New(),
		OrderDate: time.Now(),
		Items: []model.OrderItemAddRequest{
			{ProductID: uuid.New(), UnitPrice: 3, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if order.TotalBill != 12 {
		t.Errorf("Expected recalculated total 12, got %.2f", order.TotalBill)
	}
}

func TestOrdersService_UpdateOrder_NotFound(t *testing.T) {
	svc := NewOrdersService(newFakeOrdersRepo(), &fakeValidator{}, allowAll(), allowAll(), &fakeEnricher{}, testServiceLog())

	_, err := svc.UpdateOrder(context.Background(), &model.OrderUpdateRequest{
		OrderID:   uuid.New(),
		UserID:    uuid.New(),
		OrderDate: time.Now(),
		Items: []model.OrderItemAddRequest{
			{ProductID: uuid.New(), UnitPrice: 3, Quantity: 4},
		},
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestOrdersService_GetOrderByID_Enriches(t *testing.T) {
	orderID := uuid.New()
	repo := newFakeOrdersRepo()
	repo.orders[orderID] = &model.Order{OrderID: orderID, UserID: uuid.New()}
	enricher := &fakeEnricher{}

	svc := NewOrdersService(repo, &fakeValidator{}, allowAll(), allowAll(), enricher, testServiceLog())

	order, err := svc.GetOrderByID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if enricher.singleCalls != 1 {
		t.Errorf("Expected 1 enrichment call, got %d", enricher.singleCalls)
	}
	if order.UserPersonName != "Enriched Name" {
		t.Errorf("Expected enriched order, got '%s'", order.UserPersonName)
	}
}

func TestOrdersService_GetOrderByID_NilID(t *testing.T) {
	svc := NewOrdersService(newFakeOrdersRepo(), &fakeValidator{}, allowAll(), allowAll(), &fakeEnricher{}, testServiceLog())

	_, err := svc.GetOrderByID(context.Background(), uuid.Nil)
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestOrdersService_GetOrdersByUserID_Enriches(t *testing.T) {
	userID := uuid.New()
	repo := newFakeOrdersRepo()
	for i := 0; i < 2; i++ {
		id := uuid.New()
		repo.orders[id] = &model.Order{OrderID: id, UserID: userID}
	}
	enricher := &fakeEnricher{}

	svc := NewOrdersService(repo, &fakeValidator{}, allowAll(), allowAll(), enricher, testServiceLog())

	orders, err := svc.GetOrdersByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(orders))
	}
	if enricher.batchCalls != 1 {
		t.Errorf("Expected 1 batch enrichment call, got %d", enricher.batchCalls)
	}
}

func TestOrdersService_DeleteOrder(t *testing.T) {
	orderID := uuid.New()
	repo := newFakeOrdersRepo()
	repo.orders[orderID] = &model.Order{OrderID: orderID}

	svc := NewOrdersService(repo, &fakeValidator{}, allowAll(), allowAll(), &fakeEnricher{}, testServiceLog())

	if err := svc.DeleteOrder(context.Background(), orderID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(repo.orders) != 0 {
		t.Error("Expected order removed from repository")
	}

	if err := svc.DeleteOrder(context.Background(), orderID); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error on repeat delete, got %v", err)
	}
}

func TestOrdersService_AddOrder_RejectsUnknownProduct(t *testing.T) {
	missing := uuid.New()
	products := allowAll()
	products.outcomes = map[uuid.UUID]resilience.Outcome{missing: resilience.NotFound()}

	repo := newFakeOrdersRepo()
	svc := NewOrdersService(repo, &fakeValidator{}, products, allowAll(), &fakeEnricher{}, testServiceLog())

	_, err := svc.AddOrder(context.Background(), &model.OrderAddRequest{
		UserID:    uuid.New(),
		OrderDate: time.Now(),
		Items: []model.OrderItemAddRequest{
			{ProductID: missing, UnitPrice: 10, Quantity: 2},
		},
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("Expected validation error for unknown product, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Error("Order with unknown product must not be persisted")
	}
}

func TestOrdersService_AddOrder_RejectsUnknownUser(t *testing.T) {
	users := &fakeLookup{fallback: resilience.NotFound()}
	repo := newFakeOrdersRepo()
	svc := NewOrdersService(repo, &fakeValidator{}, allowAll(), users, &fakeEnricher{}, testServiceLog())

	_, err := svc.AddOrder(context.Background(), &model.OrderAddRequest{
		UserID:    uuid.New(),
		OrderDate: time.Now(),
		Items: []model.OrderItemAddRequest{
			{ProductID: uuid.New(), UnitPrice: 10, Quantity: 2},
		},
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("Expected validation error for unknown user, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Error("Order with unknown buyer must not be persisted")
	}
}

func TestOrdersService_AddOrder_AllowedWhenDependencyUnavailable(t *testing.T) {
	products := &fakeLookup{fallback: resilience.Degraded(&model.Product{}, apperrors.ErrDependencyUnavailable)}
	users := &fakeLookup{fallback: resilience.Failure(apperrors.ErrCircuitOpen)}

	repo := newFakeOrdersRepo()
	svc := NewOrdersService(repo, &fakeValidator{}, products, users, &fakeEnricher{}, testServiceLog())

	order, err := svc.AddOrder(context.Background(), &model.OrderAddRequest{
		UserID:    uuid.New(),
		OrderDate: time.Now(),
		Items: []model.OrderItemAddRequest{
			{ProductID: uuid.New(), UnitPrice: 10, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Order must be accepted when dependencies are down, got %v", err)
	}
	if _, ok := repo.orders[order.OrderID]; !ok {
		t.Error("Expected order saved to repository")
	}
}

func TestOrdersService_AddOrder_VerifiesEachProductOnce(t *testing.T) {
	products := allowAll()
	productID := uuid.New()

	svc := NewOrdersService(newFakeOrdersRepo(), &fakeValidator{}, products, allowAll(), &fakeEnricher{}, testServiceLog())

	_, err := svc.AddOrder(context.Background(), &model.OrderAddRequest{
		UserID:    uuid.New(),
		OrderDate: time.Now(),
		Items: []model.OrderItemAddRequest{
			{ProductID: productID, UnitPrice: 10, Quantity: 2},
			{ProductID: productID, UnitPrice: 10, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if products.calls != 1 {
		t.Errorf("Expected 1 product lookup for duplicate items, got %d", products.calls)
	}
}

func TestOrdersService_UpdateOrder_RejectsUnknownProduct(t *testing.T) {
	missing := uuid.New()
	products := allowAll()
	products.outcomes = map[uuid.UUID]resilience.Outcome{missing: resilience.NotFound()}

	orderID := uuid.New()
	repo := newFakeOrdersRepo()
	repo.orders[orderID] = &model.Order{OrderID: orderID, TotalBill: 100}

	svc := NewOrdersService(repo, &fakeValidator{}, products, allowAll(), &fakeEnricher{}, testServiceLog())

	_, err := svc.UpdateOrder(context.Background(), &model.OrderUpdateRequest{
		OrderID:   orderID,
		UserID:    uuid.New(),
		OrderDate: time.Now(),
		Items: []model.OrderItemAddRequest{
			{ProductID: missing, UnitPrice: 3, Quantity: 4},
		},
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("Expected validation error for unknown product, got %v", err)
	}
	if repo.orders[orderID].TotalBill != 100 {
		t.Error("Rejected update must not modify the stored order")
	}
}
