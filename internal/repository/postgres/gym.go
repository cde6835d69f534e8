package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

var _ model.GymStore = (*GymRepository)(nil)

type GymRepository struct {
	db *Connection
}

func NewGymRepository(db *Connection) *GymRepository {
	return &GymRepository{
		db: db,
	}
}

func (r *GymRepository) Create(ctx context.Context, gym model.Gym) (model.Gym, error) {
	query := `INSERT INTO gyms (owner_id, name)
			  VALUES ($1, $2)
			  RETURNING id, owner_id, name, created_at`

	var saved model.Gym
	err := r.db.QueryRow(ctx, query, gym.OwnerID, gym.Name).
		Scan(&saved.ID, &saved.OwnerID, &saved.Name, &saved.CreatedAt)
	if err != nil {
		return model.Gym{}, fmt.Errorf("failed to create gym: %w", err)
	}

	return saved, nil
}

func (r *GymRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Gym, error) {
	query := `SELECT id, owner_id, name, created_at FROM gyms WHERE id = $1`

	var gym model.Gym
	err := r.db.QueryRow(ctx, query, id).Scan(&gym.ID, &gym.OwnerID, &gym.Name, &gym.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Gym{}, model.ErrNotFound
		}
		return model.Gym{}, fmt.Errorf("failed to get gym by id: %w", err)
	}

	return gym, nil
}
