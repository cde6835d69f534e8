package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
	"github.com/dtroode/gymkeeper-server/internal/ratelimit"
)

// SessionGuard is a mock of the access token authenticator used by the
// authentication interceptor.
type SessionGuard struct {
	mock.Mock
}

func (_m *SessionGuard) Authenticate(ctx context.Context, accessToken string) (model.Principal, error) {
	ret := _m.Called(ctx, accessToken)
	return ret.Get(0).(model.Principal), ret.Error(1)
}

func NewSessionGuard(t testingT) *SessionGuard {
	m := &SessionGuard{}
	register(t, &m.Mock)
	return m
}

// Limiter is a mock of the rate limiter used by the rate limit interceptor.
type Limiter struct {
	mock.Mock
}

func (_m *Limiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	ret := _m.Called(ctx, key)
	return ret.Get(0).(ratelimit.Decision), ret.Error(1)
}

func NewLimiter(t testingT) *Limiter {
	m := &Limiter{}
	register(t, &m.Mock)
	return m
}
