package rpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ProtoFile is the contract the descriptors below implement, relative to api/proto.
const ProtoFile = "gymkeeper/v1/gymkeeper.proto"

const (
	AuthService     = "gymkeeper.v1.Auth"
	GymsService     = "gymkeeper.v1.Gyms"
	TrainersService = "gymkeeper.v1.Trainers"
)

// Full method names.
const (
	AuthRegister                 = "/" + AuthService + "/Register"
	AuthLogin                    = "/" + AuthService + "/Login"
	AuthRefresh                  = "/" + AuthService + "/Refresh"
	AuthLogout                   = "/" + AuthService + "/Logout"
	AuthChangePassword           = "/" + AuthService + "/ChangePassword"
	AuthMe                       = "/" + AuthService + "/Me"
	AuthRequestEmailVerification = "/" + AuthService + "/RequestEmailVerification"
	AuthVerifyEmail              = "/" + AuthService + "/VerifyEmail"

	GymsCreateGym        = "/" + GymsService + "/CreateGym"
	GymsInviteTrainers   = "/" + GymsService + "/InviteTrainers"
	GymsResendInvitation = "/" + GymsService + "/ResendInvitation"
	GymsListTrainers     = "/" + GymsService + "/ListTrainers"

	TrainersAcceptInvitation = "/" + TrainersService + "/AcceptInvitation"
	TrainersVerifyAccessCode = "/" + TrainersService + "/VerifyAccessCode"
)

type AuthServer interface {
	Register(context.Context, *RegisterRequest) (*User, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*emptypb.Empty, error)
	Me(context.Context, *emptypb.Empty) (*User, error)
	RequestEmailVerification(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*User, error)
}

type GymsServer interface {
	CreateGym(context.Context, *CreateGymRequest) (*Gym, error)
	InviteTrainers(context.Context, *InviteTrainersRequest) (*InviteTrainersResponse, error)
	ResendInvitation(context.Context, *ResendInvitationRequest) (*Trainer, error)
	ListTrainers(context.Context, *ListTrainersRequest) (*ListTrainersResponse, error)
}

type TrainersServer interface {
	AcceptInvitation(context.Context, *AcceptInvitationRequest) (*Trainer, error)
	VerifyAccessCode(context.Context, *VerifyAccessCodeRequest) (*Trainer, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthService,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthRegister, AuthServer.Register),
		unary(AuthLogin, AuthServer.Login),
		unary(AuthRefresh, AuthServer.Refresh),
		unary(AuthLogout, AuthServer.Logout),
		unary(AuthChangePassword, AuthServer.ChangePassword),
		unary(AuthMe, AuthServer.Me),
		unary(AuthRequestEmailVerification, AuthServer.RequestEmailVerification),
		unary(AuthVerifyEmail, AuthServer.VerifyEmail),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

var GymsServiceDesc = grpc.ServiceDesc{
	ServiceName: GymsService,
	HandlerType: (*GymsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(GymsCreateGym, GymsServer.CreateGym),
		unary(GymsInviteTrainers, GymsServer.InviteTrainers),
		unary(GymsResendInvitation, GymsServer.ResendInvitation),
		unary(GymsListTrainers, GymsServer.ListTrainers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

var TrainersServiceDesc = grpc.ServiceDesc{
	ServiceName: TrainersService,
	HandlerType: (*TrainersServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(TrainersAcceptInvitation, TrainersServer.AcceptInvitation),
		unary(TrainersVerifyAccessCode, TrainersServer.VerifyAccessCode),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func RegisterGymsServer(s grpc.ServiceRegistrar, srv GymsServer) {
	s.RegisterService(&GymsServiceDesc, srv)
}

func RegisterTrainersServer(s grpc.ServiceRegistrar, srv TrainersServer) {
	s.RegisterService(&TrainersServiceDesc, srv)
}

// unary builds the method descriptor dispatching fullMethod to call.
func unary[S, Req, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: fullMethod[strings.LastIndexByte(fullMethod, '/')+1:],
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
