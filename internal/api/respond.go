package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "ecommerce/internal/errors"

	"github.com/sirupsen/logrus"
)

// writeJSON отдает тело ответа в JSON
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError маппит AppError на HTTP-статус и отдает структурированную ошибку
func writeError(w http.ResponseWriter, log *logrus.Entry, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(err, apperrors.ErrorTypeInternal, "internal error")
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Warn("Request rejected")
	}

	writeJSON(w, appErr.HTTPStatus, appErr)
}
