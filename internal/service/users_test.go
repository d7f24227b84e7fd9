package service

import (
	"context"
	"testing"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/model"

	"github.com/google/uuid"
)

type fakeUsersRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUsersRepo) AddUser(ctx context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return apperrors.New(apperrors.ErrorTypeValidation, "email already registered")
		}
	}
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsersRepo) Close() {}

func TestUsersService_Register(t *testing.T) {
	repo := newFakeUsersRepo()
	svc := NewUsersService(repo, &fakeValidator{}, testServiceLog())

	user, err := svc.Register(context.Background(), &model.UserRegisterRequest{
		Email:      "user@example.com",
		PersonName: "Ivan Petrov",
		Gender:     "male",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.UserID == uuid.Nil {
		t.Error("Expected generated user id")
	}
	if _, ok := repo.users[user.UserID]; !ok {
		t.Error("Expected user saved to repository")
	}
}

func TestUsersService_Register_DuplicateEmail(t *testing.T) {
	repo := newFakeUsersRepo()
	svc := NewUsersService(repo, &fakeValidator{}, testServiceLog())

	req := &model.UserRegisterRequest{
		Email:      "user@example.com",
		PersonName: "Ivan Petrov",
		Gender:     "male",
	}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); err == nil {
		t.Fatal("Expected error for duplicate email")
	}
}

func TestUsersService_GetUserByID(t *testing.T) {
	userID := uuid.New()
	repo := newFakeUsersRepo()
	repo.users[userID] = &model.User{UserID: userID, PersonName: "Ivan Petrov"}

	svc := NewUsersService(repo, &fakeValidator{}, testServiceLog())

	user, err := svc.GetUserByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.PersonName != "Ivan Petrov" {
		t.Errorf("Expected 'Ivan Petrov', got '%s'", user.PersonName)
	}
}

func TestUsersService_GetUserByID_NilID(t *testing.T) {
	svc := NewUsersService(newFakeUsersRepo(), &fakeValidator{}, testServiceLog())

	_, err := svc.GetUserByID(context.Background(), uuid.Nil)
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestUsersService_GetUserByID_NotFound(t *testing.T) {
	svc := NewUsersService(newFakeUsersRepo(), &fakeValidator{}, testServiceLog())

	_, err := svc.GetUserByID(context.Background(), uuid.New())
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}
