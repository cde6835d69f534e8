package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, username, email, full_name, password_hash,
	COALESCE(refresh_token_hash, ''), email_verified, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (username, email, full_name, password_hash)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash,
	))
	if constraint, ok := uniqueConstraint(err); ok {
		if constraint == "users_username_key" {
			return model.User{}, model.ErrUsernameTaken
		}
		return model.User{}, model.ErrEmailTaken
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by login: %w", err)
	}

	return user, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, "update password hash", id, passwordHash)
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID, email string) error {
	query := `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1 AND email = $2`
	return r.execOne(ctx, query, "mark email verified", id, email)
}

func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	query := `UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, "set refresh token", userID, tokenHash)
}

// SwapRefreshTokenHash is a compare-and-swap: of concurrent swaps from the
// same current digest at most one affects the row.
func (r *UserRepository) SwapRefreshTokenHash(ctx context.Context, userID uuid.UUID, current, next string) (bool, error) {
	query := `UPDATE users SET refresh_token_hash = $3, updated_at = NOW()
			  WHERE id = $1 AND refresh_token_hash = $2`

	tag, err := r.db.Exec(ctx, query, userID, current, next)
	if err != nil {
		return false, fmt.Errorf("failed to swap refresh token: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) ClearRefreshTokenHash(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET refresh_token_hash = NULL, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, "clear refresh token", userID)
}

func (r *UserRepository) execOne(ctx context.Context, query, op string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.RefreshTokenHash, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}
