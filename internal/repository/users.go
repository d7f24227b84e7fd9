package repository

import (
	"context"
	"errors"
	"time"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/metrics"
	"ecommerce/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersRepo хранилище пользователей в PostgreSQL
type UsersRepo struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewUsersRepo создает хранилище пользователей
func NewUsersRepo(connStr string, m *metrics.Metrics) (*UsersRepo, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to connect to users database")
	}
	return &UsersRepo{pool: pool, metrics: m}, nil
}

// Close закрывает подключение
func (r *UsersRepo) Close() {
	r.pool.Close()
}

// Pool доступ к пулу (для миграций и health-проверок)
func (r *UsersRepo) Pool() *pgxpool.Pool {
	return r.pool
}

// AddUser регистрирует нового пользователя, email уникален
func (r *UsersRepo) AddUser(ctx context.Context, user *model.User) error {
	defer observeQuery(r.metrics, "users_add", time.Now())

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (user_id, email, person_name, gender)
		VALUES ($1,$2,$3,$4)`,
		user.UserID, user.Email, user.PersonName, user.Gender)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to insert user")
	}
	return nil
}

// GetUserByID загружает пользователя по идентификатору
func (r *UsersRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	defer observeQuery(r.metrics, "users_get", time.Now())

	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, email, person_name, gender
		FROM users WHERE user_id = $1`, userID).
		Scan(&u.UserID, &u.Email, &u.PersonName, &u.Gender)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to load user")
	}
	return &u, nil
}
