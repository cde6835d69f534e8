package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// ContextManager is a mock of model.ContextManager.
type ContextManager struct {
	mock.Mock
}

var _ model.ContextManager = (*ContextManager)(nil)

func (_m *ContextManager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	ret := _m.Called(ctx, userID)
	return ret.Get(0).(context.Context)
}

func (_m *ContextManager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	ret := _m.Called(ctx)
	return ret.Get(0).(uuid.UUID), ret.Bool(1)
}

func NewContextManager(t testingT) *ContextManager {
	m := &ContextManager{}
	register(t, &m.Mock)
	return m
}
