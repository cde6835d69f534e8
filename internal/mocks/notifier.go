package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// Notifier is a mock of model.Notifier.
type Notifier struct {
	mock.Mock
}

var _ model.Notifier = (*Notifier)(nil)

func (_m *Notifier) Send(ctx context.Context, msg model.Message) error {
	return _m.Called(ctx, msg).Error(0)
}

func NewNotifier(t testingT) *Notifier {
	m := &Notifier{}
	register(t, &m.Mock)
	return m
}
