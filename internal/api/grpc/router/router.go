package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/dtroode/gymkeeper-server/internal/api/grpc/handler"
	"github.com/dtroode/gymkeeper-server/internal/api/grpc/middleware"
	"github.com/dtroode/gymkeeper-server/internal/api/grpc/rpc"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// publicMethods are served without an access token.
var publicMethods = map[string]bool{
	rpc.AuthRegister:             true,
	rpc.AuthLogin:                true,
	rpc.AuthRefresh:              true,
	rpc.AuthVerifyEmail:          true,
	rpc.TrainersAcceptInvitation: true,
	rpc.TrainersVerifyAccessCode: true,
}

// throttledMethods accept guessable secrets and are rate limited per caller.
var throttledMethods = map[string]bool{
	rpc.AuthRegister:             true,
	rpc.AuthLogin:                true,
	rpc.AuthRefresh:              true,
	rpc.TrainersAcceptInvitation: true,
	rpc.TrainersVerifyAccessCode: true,
}

// Services are the application services exposed over gRPC.
type Services struct {
	Auth        handler.AuthService
	Gyms        handler.GymService
	Invitations handler.InvitationService
	Rosters     handler.RosterService
	Session     middleware.SessionGuard
}

// Router wires services, handlers and interceptors into a gRPC server.
type Router struct {
	services       Services
	limiter        middleware.Limiter
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance. A nil limiter disables rate limiting.
func New(services Services, limiter middleware.Limiter, contextManager model.ContextManager, logger *logger.Logger) *Router {
	return &Router{
		services:       services,
		limiter:        limiter,
		contextManager: contextManager,
		logger:         logger,
	}
}

func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return !publicMethods[c.FullMethod()]
}

func throttled(_ context.Context, c interceptors.CallMeta) bool {
	return throttledMethods[c.FullMethod()]
}

// Register builds the gRPC server with the JSON codec, request logging,
// rate limiting and authentication interceptors.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.services.Session, r.contextManager, r.logger)

	unary := []grpc.UnaryServerInterceptor{logging.HandleGRPC}
	if r.limiter != nil {
		rateLimit := middleware.NewRateLimit(r.limiter, r.logger)
		unary = append(unary, selector.UnaryServerInterceptor(rateLimit.HandleGRPC, selector.MatchFunc(throttled)))
	}
	unary = append(unary, selector.UnaryServerInterceptor(
		auth.UnaryServerInterceptor(authenticate.AuthFunc),
		selector.MatchFunc(requiresAuth),
	))

	s := grpc.NewServer(
		grpc.ForceServerCodec(rpc.Codec{}),
		grpc.ChainUnaryInterceptor(unary...),
	)

	rpc.RegisterAuthServer(s, handler.NewAuth(r.services.Auth, r.contextManager, r.logger))
	rpc.RegisterGymsServer(s, handler.NewGyms(r.services.Gyms, r.services.Invitations, r.services.Rosters, r.contextManager, r.logger))
	rpc.RegisterTrainersServer(s, handler.NewTrainers(r.services.Invitations, r.logger))

	return s
}
