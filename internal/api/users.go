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

// UsersAPI HTTP-интерфейс сервиса пользователей
type UsersAPI struct {
	service *service.UsersService
	log     *logrus.Entry
}

// NewUsersAPI создает API пользователей
func NewUsersAPI(svc *service.UsersService, log *logrus.Entry) *UsersAPI {
	return &UsersAPI{service: svc, log: log}
}

// Router собирает маршрутизатор сервиса пользователей
func (a *UsersAPI) Router(m *metrics.Metrics, rl *ratelimit.Middleware, h *health.Health) *mux.Router {
	r := mux.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Use(rl.Handler)

	r.HandleFunc("/api/users/register", a.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}", a.handleGetUser).Methods(http.MethodGet)

	r.Handle("/health", h.Handler()).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return r
}

func (a *UsersAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.UserRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, a.log, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid JSON body"))
		return
	}

	user, err := a.service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (a *UsersAPI) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, a.log, apperrors.New(apperrors.ErrorTypeValidation, "invalid user id"))
		return
	}

	user, err := a.service.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
