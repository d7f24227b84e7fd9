package model

import (
	"github.com/google/uuid"
)

// User пользователь из сервиса Users
type User struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	PersonName string    `json:"person_name"`
	Gender     string    `json:"gender"`
}

// UserRegisterRequest запрос на регистрацию пользователя
type UserRegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	PersonName string `json:"person_name" validate:"required,min=2,max=100"`
	Gender     string `json:"gender" validate:"required,oneof=Male Female Other"`
}
