package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// PasswordHasher is a mock of model.PasswordHasher.
type PasswordHasher struct {
	mock.Mock
}

var _ model.PasswordHasher = (*PasswordHasher)(nil)

func (_m *PasswordHasher) Hash(plain string) (string, error) {
	ret := _m.Called(plain)
	return ret.String(0), ret.Error(1)
}

func (_m *PasswordHasher) Verify(plain, hash string) bool {
	return _m.Called(plain, hash).Bool(0)
}

func NewPasswordHasher(t testingT) *PasswordHasher {
	m := &PasswordHasher{}
	register(t, &m.Mock)
	return m
}
