package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// GymStore is a mock of model.GymStore.
type GymStore struct {
	mock.Mock
}

var _ model.GymStore = (*GymStore)(nil)

func (_m *GymStore) Create(ctx context.Context, gym model.Gym) (model.Gym, error) {
	ret := _m.Called(ctx, gym)
	return ret.Get(0).(model.Gym), ret.Error(1)
}

func (_m *GymStore) GetByID(ctx context.Context, id uuid.UUID) (model.Gym, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.Gym), ret.Error(1)
}

func NewGymStore(t testingT) *GymStore {
	m := &GymStore{}
	register(t, &m.Mock)
	return m
}
