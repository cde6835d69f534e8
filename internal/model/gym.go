package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GymStore defines persistence operations for gyms.
type GymStore interface {
	Create(ctx context.Context, gym Gym) (Gym, error)
	GetByID(ctx context.Context, id uuid.UUID) (Gym, error)
}

// Gym is a tenant that invites trainers.
type Gym struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	CreatedAt time.Time
}
