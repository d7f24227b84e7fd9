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

// ProductsAPI HTTP-интерфейс сервиса товаров
type ProductsAPI struct {
	service *service.ProductsService
	log     *logrus.Entry
}

// NewProductsAPI создает API товаров
func NewProductsAPI(svc *service.ProductsService, log *logrus.Entry) *ProductsAPI {
	return &ProductsAPI{service: svc, log: log}
}

// Router собирает маршрутизатор сервиса товаров
// Путь поиска по ID сохраняет контракт, на который ходит сервис заказов
func (a *ProductsAPI) Router(m *metrics.Metrics, rl *ratelimit.Middleware, h *health.Health) *mux.Router {
	r := mux.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Use(rl.Handler)

	r.HandleFunc("/api/products", a.handleAddProduct).Methods(http.MethodPost)
	r.HandleFunc("/api/products", a.handleUpdateProduct).Methods(http.MethodPut)
	r.HandleFunc("/api/products", a.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/search/product-id/{productId}", a.handleGetProduct).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{productId}", a.handleDeleteProduct).Methods(http.MethodDelete)

	r.Handle("/health", h.Handler()).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return r
}

func (a *ProductsAPI) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req model.ProductAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, a.log, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid JSON body"))
		return
	}

	product, err := a.service.AddProduct(r.Context(), &req)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

func (a *ProductsAPI) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req model.ProductUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, a.log, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid JSON body"))
		return
	}

	product, err := a.service.UpdateProduct(r.Context(), &req)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (a *ProductsAPI) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListProducts(r.Context())
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	if products == nil {
		products = []*model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *ProductsAPI) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		writeError(w, a.log, apperrors.New(apperrors.ErrorTypeValidation, "invalid product id"))
		return
	}

	product, err := a.service.GetProductByID(r.Context(), productID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (a *ProductsAPI) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		writeError(w, a.log, apperrors.New(apperrors.ErrorTypeValidation, "invalid product id"))
		return
	}

	if err := a.service.DeleteProduct(r.Context(), productID); err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
