package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// Storage is a mock of model.Storage.
type Storage struct {
	mock.Mock
}

var _ model.Storage = (*Storage)(nil)

func (_m *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return _m.Called(ctx, key, reader, size, contentType).Error(0)
}

func NewStorage(t testingT) *Storage {
	m := &Storage{}
	register(t, &m.Mock)
	return m
}
