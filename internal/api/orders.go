package api

import (
	"encoding/json"
	"net/http"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/health"
	"ecommerce/internal/metrics"
	"ecommerce/internal/model"
	"ecommerce/internal/ratelimit"
	"ecommerce/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// OrdersAPI HTTP-интерфейс сервиса заказов
type OrdersAPI struct {
	service *service.OrdersService
	log     *logrus.Entry
}

// NewOrdersAPI создает API заказов
func NewOrdersAPI(svc *service.OrdersService, log *logrus.Entry) *OrdersAPI {
	return &OrdersAPI{service: svc, log: log}
}

// Router собирает маршрутизатор с метриками, rate limiting и health-проверками
func (a *OrdersAPI) Router(m *metrics.Metrics, rl *ratelimit.Middleware, h *health.Health) *mux.Router {
	r := mux.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Use(rl.Handler)

	r.HandleFunc("/api/orders", a.handleAddOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", a.handleUpdateOrder).Methods(http.MethodPut)
	r.HandleFunc("/api/orders/{orderId}", a.handleGetOrder).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{orderId}", a.handleDeleteOrder).Methods(http.MethodDelete)
	r.HandleFunc("/api/orders/user/{userId}", a.handleGetUserOrders).Methods(http.MethodGet)

	r.Handle("/health", h.Handler()).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return r
}

func (a *OrdersAPI) handleAddOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, a.log, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid JSON body"))
		return
	}

	order, err := a.service.AddOrder(r.Context(), &req)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

func (a *OrdersAPI) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, a.log, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid JSON body"))
		return
	}

	order, err := a.service.UpdateOrder(r.Context(), &req)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (a *OrdersAPI) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		writeError(w, a.log, apperrors.New(apperrors.ErrorTypeValidation, "invalid order id"))
		return
	}

	order, err := a.service.GetOrderByID(r.Context(), orderID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (a *OrdersAPI) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		writeError(w, a.log, apperrors.New(apperrors.ErrorTypeValidation, "invalid order id"))
		return
	}

	if err := a.service.DeleteOrder(r.Context(), orderID); err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (a *OrdersAPI) handleGetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, a.log, apperrors.New(apperrors.ErrorTypeValidation, "invalid user id"))
		return
	}

	orders, err := a.service.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	if orders == nil {
		orders = []*model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
