package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

const (
	typeAccess       = "access"
	typeRefresh      = "refresh"
	typeVerification = "verification"
)

const (
	DefaultAccessTTL       = 15 * time.Minute
	DefaultRefreshTTL      = 30 * 24 * time.Hour
	DefaultVerificationTTL = 24 * time.Hour
)

// Claims represents JWT claims with token type and user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"typ"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
}

// Options configures secrets and lifetimes of each token class.
type Options struct {
	AccessSecret       string
	RefreshSecret      string
	VerificationSecret string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	VerificationTTL    time.Duration
	// Now overrides the clock used for issuing and validating tokens.
	Now func() time.Time
}

// JWT implements TokenManager backed by symmetric HMAC, one secret per token class.
type JWT struct {
	opts Options
	now  func() time.Time
}

var _ model.TokenManager = (*JWT)(nil)

// NewJWT creates a new JWT token manager. Zero TTLs fall back to defaults.
func NewJWT(opts Options) *JWT {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = DefaultVerificationTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &JWT{opts: opts, now: now}
}

// GenerateAccessToken creates a short-lived access token carrying display claims.
func (j *JWT) GenerateAccessToken(c model.AccessClaims) (string, error) {
	tokenString, err := j.sign(j.opts.AccessSecret, j.opts.AccessTTL, Claims{
		UserID:    c.UserID,
		TokenType: typeAccess,
		Email:     c.Email,
		Username:  c.Username,
		FullName:  c.FullName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived refresh token bound only to the user ID.
func (j *JWT) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	tokenString, err := j.sign(j.opts.RefreshSecret, j.opts.RefreshTTL, Claims{
		UserID:    userID,
		TokenType: typeRefresh,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return tokenString, nil
}

// GenerateVerificationToken creates an email verification token.
func (j *JWT) GenerateVerificationToken(userID uuid.UUID, email string) (string, error) {
	tokenString, err := j.sign(j.opts.VerificationSecret, j.opts.VerificationTTL, Claims{
		UserID:    userID,
		TokenType: typeVerification,
		Email:     email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}
	return tokenString, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.AccessClaims, error) {
	claims, err := j.parse(tokenString, j.opts.AccessSecret, typeAccess)
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	return model.AccessClaims{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		FullName: claims.FullName,
	}, nil
}

// ParseRefreshToken validates a refresh token and returns the user ID.
func (j *JWT) ParseRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString, j.opts.RefreshSecret, typeRefresh)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse refresh token: %w", err)
	}
	return claims.UserID, nil
}

// ParseVerificationToken validates an email verification token.
func (j *JWT) ParseVerificationToken(tokenString string) (uuid.UUID, string, error) {
	claims, err := j.parse(tokenString, j.opts.VerificationSecret, typeVerification)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to parse verification token: %w", err)
	}
	return claims.UserID, claims.Email, nil
}

func (j *JWT) sign(secret string, ttl time.Duration, claims Claims) (string, error) {
	now := j.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (j *JWT) parse(tokenString, secret, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}
