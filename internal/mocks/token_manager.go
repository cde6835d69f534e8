package mocks

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// TokenManager is a mock of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

var _ model.TokenManager = (*TokenManager)(nil)

func (_m *TokenManager) GenerateAccessToken(claims model.AccessClaims) (string, error) {
	ret := _m.Called(claims)
	return ret.String(0), ret.Error(1)
}

func (_m *TokenManager) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	ret := _m.Called(userID)
	return ret.String(0), ret.Error(1)
}

func (_m *TokenManager) GenerateVerificationToken(userID uuid.UUID, email string) (string, error) {
	ret := _m.Called(userID, email)
	return ret.String(0), ret.Error(1)
}

func (_m *TokenManager) ParseAccessToken(token string) (model.AccessClaims, error) {
	ret := _m.Called(token)
	return ret.Get(0).(model.AccessClaims), ret.Error(1)
}

func (_m *TokenManager) ParseRefreshToken(token string) (uuid.UUID, error) {
	ret := _m.Called(token)
	return ret.Get(0).(uuid.UUID), ret.Error(1)
}

func (_m *TokenManager) ParseVerificationToken(token string) (uuid.UUID, string, error) {
	ret := _m.Called(token)
	return ret.Get(0).(uuid.UUID), ret.String(1), ret.Error(2)
}

func NewTokenManager(t testingT) *TokenManager {
	m := &TokenManager{}
	register(t, &m.Mock)
	return m
}
