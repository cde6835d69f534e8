package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// accessTokenCookie is read when no authorization header is sent.
const accessTokenCookie = "accessToken"

// SessionGuard resolves the principal behind an access token.
type SessionGuard interface {
	Authenticate(ctx context.Context, accessToken string) (model.Principal, error)
}

// Authenticate validates bearer tokens and injects user ID into context.
type Authenticate struct {
	guard          SessionGuard
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(guard SessionGuard, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{guard: guard, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the access token from the authorization header or the
// accessToken cookie and returns a context carrying the caller's user ID.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	principal, err := m.guard.Authenticate(ctx, tokenFromMetadata(ctx))
	if err != nil {
		message := "invalid authorization token"
		code := codes.Unauthenticated
		if apiErr, ok := apierror.As(err); ok {
			message, code = apiErr.Message, apiErr.GRPCCode
		} else {
			m.logger.Error("Authenticate middleware: session lookup failed",
				"error", err.Error())
			message, code = "internal server error", codes.Internal
		}
		return nil, status.Error(code, message)
	}

	if principal.ID == uuid.Nil {
		return nil, status.Error(codes.Unauthenticated, "invalid authorization token")
	}

	return m.contextManager.SetUserIDToContext(ctx, principal.ID), nil
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	if values := md.Get("authorization"); len(values) > 0 {
		if token := strings.TrimSpace(strings.TrimPrefix(values[0], "Bearer ")); token != "" {
			return token
		}
	}

	for _, raw := range md.Get("cookie") {
		cookies, err := http.ParseCookie(raw)
		if err != nil {
			continue
		}
		for _, c := range cookies {
			if c.Name == accessTokenCookie && c.Value != "" {
				return c.Value
			}
		}
	}

	return ""
}
