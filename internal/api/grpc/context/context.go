// Package context carries the authenticated caller through gRPC request contexts.
package context

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

// userIDKey is the incoming metadata key holding the authenticated user ID.
// The authentication interceptor overwrites any value sent by the client.
const userIDKey = "x-gymkeeper-user-id"

// Manager implements model.ContextManager on top of incoming gRPC metadata.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetUserIDToContext returns a context whose incoming metadata holds userID.
// The caller's metadata is copied, never mutated.
func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}
	md.Set(userIDKey, userID.String())

	return metadata.NewIncomingContext(ctx, md)
}

// GetUserIDFromContext returns the user ID set by SetUserIDToContext.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, false
	}

	values := md.Get(userIDKey)
	if len(values) == 0 {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(values[0])
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, false
	}

	return userID, true
}
