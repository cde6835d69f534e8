package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// Gyms manages tenants.
type Gyms struct {
	gyms   model.GymStore
	logger *logger.Logger
}

func NewGyms(gyms model.GymStore, logger *logger.Logger) *Gyms {
	return &Gyms{gyms: gyms, logger: logger}
}

// Create registers a gym owned by ownerID.
func (s *Gyms) Create(ctx context.Context, ownerID uuid.UUID, name string) (model.Gym, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Gym{}, apierror.NewErrValidation(apierror.FieldError{Field: "name", Reason: "required"})
	}

	gym, err := s.gyms.Create(ctx, model.Gym{OwnerID: ownerID, Name: name})
	if err != nil {
		s.logger.Error("Gym service: failed to create gym",
			"owner_id", ownerID,
			"error", err.Error())
		return model.Gym{}, fmt.Errorf("failed to create gym: %w", err)
	}

	s.logger.Info("Gym service: gym created",
		"gym_id", gym.ID,
		"owner_id", ownerID)

	return gym, nil
}

// Get returns the gym if ownerID owns it.
func (s *Gyms) Get(ctx context.Context, ownerID, gymID uuid.UUID) (model.Gym, error) {
	return ownedGym(ctx, s.gyms, ownerID, gymID)
}

// ownedGym reports a gym of another owner as not found.
func ownedGym(ctx context.Context, gyms model.GymStore, ownerID, gymID uuid.UUID) (model.Gym, error) {
	gym, err := gyms.GetByID(ctx, gymID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Gym{}, apierror.NewErrGymNotFound(gymID.String())
	}
	if err != nil {
		return model.Gym{}, fmt.Errorf("failed to get gym by id: %w", err)
	}

	if gym.OwnerID != ownerID {
		return model.Gym{}, apierror.NewErrGymNotFound(gymID.String())
	}

	return gym, nil
}
