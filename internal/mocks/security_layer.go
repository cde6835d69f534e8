package mocks

import (
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// SecurityLayer is a mock of model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

var _ model.SecurityLayer = (*SecurityLayer)(nil)

func (_m *SecurityLayer) Listen(network, addr string) (net.Listener, error) {
	ret := _m.Called(network, addr)
	l, _ := ret.Get(0).(net.Listener)
	return l, ret.Error(1)
}

func NewSecurityLayer(t testingT) *SecurityLayer {
	m := &SecurityLayer{}
	register(t, &m.Mock)
	return m
}
