package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// Auth implements registration, login and account operations.
type Auth struct {
	users     model.UserStore
	hasher    model.PasswordHasher
	manager   model.TokenManager
	notifier  model.Notifier
	tokens    *TokenService
	verifyURL string
	logger    *logger.Logger
}

func NewAuth(
	users model.UserStore,
	hasher model.PasswordHasher,
	manager model.TokenManager,
	notifier model.Notifier,
	verifyURL string,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:     users,
		hasher:    hasher,
		manager:   manager,
		notifier:  notifier,
		tokens:    NewTokenService(manager, users, logger),
		verifyURL: verifyURL,
		logger:    logger,
	}
}

// Register creates a user. Username and email are normalized and must be unique.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	username := normalize(params.Username)
	email := normalize(params.Email)

	if fields := validateRegistration(username, email, params.Password); len(fields) > 0 {
		return model.User{}, apierror.NewErrValidation(fields...)
	}

	a.logger.Debug("Auth service: registering user",
		"username", username,
		"email", email)

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"username", username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.users.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(params.FullName),
		PasswordHash: hash,
	})
	switch {
	case errors.Is(err, model.ErrUsernameTaken):
		return model.User{}, apierror.NewErrUsernameIsTaken(username)
	case errors.Is(err, model.ErrEmailTaken):
		return model.User{}, apierror.NewErrEmailIsTaken(email)
	case err != nil:
		a.logger.Error("Auth service: failed to create user",
			"username", username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID)

	return user, nil
}

// Login checks credentials and issues a token pair. The previous refresh
// token of the user, if any, stops being valid.
func (a *Auth) Login(ctx context.Context, params model.LoginParams) (model.Session, error) {
	login := normalize(params.Login)
	if login == "" || params.Password == "" {
		return model.Session{}, apierror.NewErrInvalidCredentials(nil)
	}

	user, err := a.users.GetByLogin(ctx, login)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: login for unknown user")
		return model.Session{}, apierror.NewErrInvalidCredentials(err)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get user by login: %w", err)
	}

	if !a.hasher.Verify(params.Password, user.PasswordHash) {
		a.logger.Info("Auth service: wrong password",
			"user_id", user.ID)
		return model.Session{}, apierror.NewErrInvalidCredentials(nil)
	}

	pair, err := a.tokens.Issue(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return model.Session{User: user, Tokens: pair}, nil
}

// Refresh rotates the refresh token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	return a.tokens.Refresh(ctx, refreshToken)
}

// Logout revokes the refresh token of userID.
func (a *Auth) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := a.tokens.Revoke(ctx, userID); err != nil {
		a.logger.Error("Auth service: failed to revoke refresh token",
			"user_id", userID,
			"error", err.Error())
		return err
	}

	a.logger.Info("Auth service: user logged out",
		"user_id", userID)
	return nil
}

// ChangePassword replaces the password and signs the user out of other sessions.
func (a *Auth) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apierror.NewErrValidation(apierror.FieldError{Field: "new_password", Reason: "required"})
	}

	user, err := a.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !a.hasher.Verify(oldPassword, user.PasswordHash) {
		return apierror.NewErrInvalidCredentials(nil)
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := a.tokens.Revoke(ctx, userID); err != nil {
		return err
	}

	a.logger.Info("Auth service: password changed",
		"user_id", userID)
	return nil
}

// CurrentUser returns the stored user.
func (a *Auth) CurrentUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	return a.getUser(ctx, userID)
}

// RequestEmailVerification sends a verification link to the user's email.
func (a *Auth) RequestEmailVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := a.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return nil
	}

	token, err := a.manager.GenerateVerificationToken(user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	err = a.notifier.Send(ctx, model.Message{
		To:          user.Email,
		Subject:     "Confirm your email",
		Title:       "Confirm your email",
		Body:        "Follow the link below to confirm your email address.",
		ActionURL:   withToken(a.verifyURL, token),
		ActionLabel: "Confirm email",
	})
	if err != nil {
		a.logger.Error("Auth service: failed to send verification email",
			"user_id", user.ID,
			"error", err.Error())
		return apierror.NewErrDeliveryFailed(err)
	}

	return nil
}

// VerifyEmail marks the email encoded in token as verified.
// The user must still own that email.
func (a *Auth) VerifyEmail(ctx context.Context, token string) (model.User, error) {
	userID, email, err := a.manager.ParseVerificationToken(token)
	if err != nil {
		return model.User{}, apierror.NewErrInvalidVerificationToken(err)
	}

	err = a.users.MarkEmailVerified(ctx, userID, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apierror.NewErrInvalidVerificationToken(err)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to mark email verified: %w", err)
	}

	a.logger.Info("Auth service: email verified",
		"user_id", userID)

	return a.getUser(ctx, userID)
}

func (a *Auth) getUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apierror.NewErrUserNotFound(userID.String())
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// withToken appends token as a query parameter, keeping any existing query.
func withToken(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
