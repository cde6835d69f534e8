package middleware

import (
	"context"
	"math"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/ratelimit"
)

// Limiter takes a token from the bucket named key.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// RateLimit throttles selected methods per caller address. When the limiter
// itself fails the request is let through.
type RateLimit struct {
	limiter Limiter
	logger  *logger.Logger
}

func NewRateLimit(limiter Limiter, logger *logger.Logger) *RateLimit {
	return &RateLimit{limiter: limiter, logger: logger}
}

func (m *RateLimit) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	key := info.FullMethod + ":" + callerIP(ctx)

	decision, err := m.limiter.Allow(ctx, key)
	if err != nil {
		m.logger.Warn("Rate limit middleware: limiter unavailable, allowing request",
			"method", info.FullMethod,
			"error", err.Error())
		return handler(ctx, req)
	}

	if !decision.Allowed {
		retry := int64(math.Ceil(decision.RetryAfter.Seconds()))
		_ = grpc.SetHeader(ctx, metadata.Pairs("retry-after", strconv.FormatInt(retry, 10)))

		m.logger.Info("Rate limit middleware: request throttled",
			"method", info.FullMethod,
			"retry_after_s", retry)

		apiErr := apierror.NewErrRateLimited()
		return nil, status.Error(apiErr.GRPCCode, apiErr.Message)
	}

	return handler(ctx, req)
}

func callerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}
