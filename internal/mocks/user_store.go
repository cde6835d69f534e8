package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

var _ model.UserStore = (*UserStore)(nil)

func (_m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	ret := _m.Called(ctx, user)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByLogin(ctx context.Context, login string) (model.User, error) {
	ret := _m.Called(ctx, login)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return _m.Called(ctx, id, passwordHash).Error(0)
}

func (_m *UserStore) MarkEmailVerified(ctx context.Context, id uuid.UUID, email string) error {
	return _m.Called(ctx, id, email).Error(0)
}

func (_m *UserStore) SetRefreshTokenHash(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	return _m.Called(ctx, userID, tokenHash).Error(0)
}

func (_m *UserStore) SwapRefreshTokenHash(ctx context.Context, userID uuid.UUID, current, next string) (bool, error) {
	ret := _m.Called(ctx, userID, current, next)
	return ret.Bool(0), ret.Error(1)
}

func (_m *UserStore) ClearRefreshTokenHash(ctx context.Context, userID uuid.UUID) error {
	return _m.Called(ctx, userID).Error(0)
}

// NewUserStore creates a UserStore that asserts its expectations on cleanup.
func NewUserStore(t testingT) *UserStore {
	m := &UserStore{}
	register(t, &m.Mock)
	return m
}
