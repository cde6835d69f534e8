package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// Session resolves access tokens to live principals.
type Session struct {
	manager model.TokenManager
	users   model.UserStore
	logger  *logger.Logger
}

func NewSession(manager model.TokenManager, users model.UserStore, logger *logger.Logger) *Session {
	return &Session{manager: manager, users: users, logger: logger}
}

// Authenticate verifies the access token and requires its user to still exist.
// The principal is built from the stored user, not from the token claims.
func (s *Session) Authenticate(ctx context.Context, accessToken string) (model.Principal, error) {
	if accessToken == "" {
		return model.Principal{}, apierror.NewErrMissingAuthorizationToken()
	}

	claims, err := s.manager.ParseAccessToken(accessToken)
	if err != nil {
		return model.Principal{}, apierror.NewErrInvalidAuthorizationToken(err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Session: token references a deleted user",
			"user_id", claims.UserID)
		return model.Principal{}, apierror.NewErrInvalidAuthorizationToken(err)
	}
	if err != nil {
		return model.Principal{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return model.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	}, nil
}
