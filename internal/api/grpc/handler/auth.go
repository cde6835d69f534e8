package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/dtroode/gymkeeper-server/internal/api/grpc/rpc"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// AuthService defines account and session operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.User, error)
	Login(ctx context.Context, params model.LoginParams) (model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (model.User, error)
	RequestEmailVerification(ctx context.Context, userID uuid.UUID) error
	VerifyEmail(ctx context.Context, token string) (model.User, error)
}

var _ rpc.AuthServer = (*Auth)(nil)

// Auth handles gRPC endpoints for authentication.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register creates an account.
func (h *Auth) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.User, error) {
	h.logger.Debug("Auth handler: processing registration request",
		"username", req.Username)

	user, err := h.authService.Register(ctx, model.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		logFailure(h.logger, "Auth handler: registration failed", err,
			"username", req.Username)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", user.ID)

	return toUser(user), nil
}

// Login exchanges credentials for a token pair.
func (h *Auth) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	h.logger.Debug("Auth handler: processing login request",
		"login", req.Login)

	session, err := h.authService.Login(ctx, model.LoginParams{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		logFailure(h.logger, "Auth handler: login failed", err,
			"login", req.Login)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: login completed",
		"user_id", session.User.ID)

	return &rpc.LoginResponse{
		User:         *toUser(session.User),
		AccessToken:  session.Tokens.AccessToken,
		RefreshToken: session.Tokens.RefreshToken,
	}, nil
}

// Refresh rotates the refresh token.
func (h *Auth) Refresh(ctx context.Context, req *rpc.RefreshRequest) (*rpc.TokenResponse, error) {
	h.logger.Debug("Auth handler: processing token refresh request")

	tokens, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		logFailure(h.logger, "Auth handler: token refresh failed", err)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: token refresh successful")

	return &rpc.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the caller's refresh token.
func (h *Auth) Logout(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated()
	}

	if err := h.authService.Logout(ctx, userID); err != nil {
		logFailure(h.logger, "Auth handler: logout failed", err,
			"user_id", userID)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: logout completed",
		"user_id", userID)

	return &emptypb.Empty{}, nil
}

func (h *Auth) ChangePassword(ctx context.Context, req *rpc.ChangePasswordRequest) (*emptypb.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated()
	}

	if err := h.authService.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		logFailure(h.logger, "Auth handler: password change failed", err,
			"user_id", userID)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: password changed",
		"user_id", userID)

	return &emptypb.Empty{}, nil
}

// Me returns the authenticated user.
func (h *Auth) Me(ctx context.Context, _ *emptypb.Empty) (*rpc.User, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated()
	}

	user, err := h.authService.CurrentUser(ctx, userID)
	if err != nil {
		logFailure(h.logger, "Auth handler: get current user failed", err,
			"user_id", userID)
		return nil, handleError(err)
	}

	return toUser(user), nil
}

func (h *Auth) RequestEmailVerification(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated()
	}

	if err := h.authService.RequestEmailVerification(ctx, userID); err != nil {
		logFailure(h.logger, "Auth handler: email verification request failed", err,
			"user_id", userID)
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

func (h *Auth) VerifyEmail(ctx context.Context, req *rpc.VerifyEmailRequest) (*rpc.User, error) {
	user, err := h.authService.VerifyEmail(ctx, req.Token)
	if err != nil {
		logFailure(h.logger, "Auth handler: email verification failed", err)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: email verified",
		"user_id", user.ID)

	return toUser(user), nil
}

func toUser(u model.User) *rpc.User {
	return &rpc.User{
		ID:            u.ID.String(),
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}
