package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// AuthService is a mock of the auth service consumed by the gRPC handlers.
type AuthService struct {
	mock.Mock
}

func (_m *AuthService) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *AuthService) Login(ctx context.Context, params model.LoginParams) (model.Session, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.Session), ret.Error(1)
}

func (_m *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	ret := _m.Called(ctx, refreshToken)
	return ret.Get(0).(model.TokenPair), ret.Error(1)
}

func (_m *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return _m.Called(ctx, userID).Error(0)
}

func (_m *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	return _m.Called(ctx, userID, oldPassword, newPassword).Error(0)
}

func (_m *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	ret := _m.Called(ctx, userID)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *AuthService) RequestEmailVerification(ctx context.Context, userID uuid.UUID) error {
	return _m.Called(ctx, userID).Error(0)
}

func (_m *AuthService) VerifyEmail(ctx context.Context, token string) (model.User, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(model.User), ret.Error(1)
}

func NewAuthService(t testingT) *AuthService {
	m := &AuthService{}
	register(t, &m.Mock)
	return m
}
