package service

import (
	"context"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/interfaces"
	"ecommerce/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UsersService бизнес-логика пользователей
type UsersService struct {
	repo      interfaces.UsersRepository
	validator interfaces.RequestValidator
	log       *logrus.Entry
}

// NewUsersService создает сервис пользователей
func NewUsersService(repo interfaces.UsersRepository, validator interfaces.RequestValidator, log *logrus.Entry) *UsersService {
	return &UsersService{
		repo:      repo,
		validator: validator,
		log:       log,
	}
}

// Register проверяет запрос и регистрирует пользователя
func (s *UsersService) Register(ctx context.Context, req *model.UserRegisterRequest) (*model.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user := &model.User{
		UserID:     uuid.New(),
		Email:      req.Email,
		PersonName: req.PersonName,
		Gender:     req.Gender,
	}
	if err := s.repo.AddUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.UserID,
		"email":   user.Email,
	}).Info("User registered")

	return user, nil
}

// GetUserByID возвращает пользователя по идентификатору
func (s *UsersService) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.ErrorTypeValidation, "user id is empty")
	}
	return s.repo.GetUserByID(ctx, userID)
}
