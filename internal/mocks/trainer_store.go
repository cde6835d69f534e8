package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// TrainerStore is a mock of model.TrainerStore.
type TrainerStore struct {
	mock.Mock
}

var _ model.TrainerStore = (*TrainerStore)(nil)

func (_m *TrainerStore) AppendMembership(ctx context.Context, email string, membership model.Membership) (model.Trainer, error) {
	ret := _m.Called(ctx, email, membership)
	return ret.Get(0).(model.Trainer), ret.Error(1)
}

func (_m *TrainerStore) AcceptInvitation(ctx context.Context, token string, now time.Time) (model.Trainer, uuid.UUID, error) {
	ret := _m.Called(ctx, token, now)
	return ret.Get(0).(model.Trainer), ret.Get(1).(uuid.UUID), ret.Error(2)
}

func (_m *TrainerStore) RenewInvitation(ctx context.Context, email string, gymID uuid.UUID, accessCode string, token model.InvitationToken) (model.Trainer, error) {
	ret := _m.Called(ctx, email, gymID, accessCode, token)
	return ret.Get(0).(model.Trainer), ret.Error(1)
}

func (_m *TrainerStore) GetByEmail(ctx context.Context, email string) (model.Trainer, error) {
	ret := _m.Called(ctx, email)
	return ret.Get(0).(model.Trainer), ret.Error(1)
}

func (_m *TrainerStore) ListByGym(ctx context.Context, gymID uuid.UUID, limit, offset int) ([]model.Trainer, error) {
	ret := _m.Called(ctx, gymID, limit, offset)
	trainers, _ := ret.Get(0).([]model.Trainer)
	return trainers, ret.Error(1)
}

func (_m *TrainerStore) HasMembers(ctx context.Context, gymID uuid.UUID) (bool, error) {
	ret := _m.Called(ctx, gymID)
	return ret.Bool(0), ret.Error(1)
}

func NewTrainerStore(t testingT) *TrainerStore {
	m := &TrainerStore{}
	register(t, &m.Mock)
	return m
}
