package rpc

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestCodec(t *testing.T) {
	t.Parallel()

	c := Codec{}
	assert.Equal(t, "json", c.Name())
	assert.NotNil(t, encoding.GetCodec(CodecName))

	t.Run("struct", func(t *testing.T) {
		data, err := c.Marshal(&LoginRequest{Login: "alice", Password: "pw"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"login":"alice","password":"pw"}`, string(data))

		var got LoginRequest
		require.NoError(t, c.Unmarshal(data, &got))
		assert.Equal(t, "alice", got.Login)
	})

	t.Run("proto message", func(t *testing.T) {
		data, err := c.Marshal(&emptypb.Empty{})
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
		require.NoError(t, c.Unmarshal(data, &emptypb.Empty{}))
	})

	t.Run("empty payload", func(t *testing.T) {
		var got VerifyEmailRequest
		require.NoError(t, c.Unmarshal(nil, &got))
		assert.Empty(t, got.Token)
	})

	t.Run("malformed payload", func(t *testing.T) {
		var got VerifyEmailRequest
		err := c.Unmarshal([]byte(`{"token":`), &got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal")
	})
}

type trainersStub struct {
	got *AcceptInvitationRequest
}

func (s *trainersStub) AcceptInvitation(_ context.Context, req *AcceptInvitationRequest) (*Trainer, error) {
	s.got = req
	return &Trainer{Email: "a@x.com"}, nil
}

func (s *trainersStub) VerifyAccessCode(context.Context, *VerifyAccessCodeRequest) (*Trainer, error) {
	return nil, nil
}

func TestServiceDesc_Dispatch(t *testing.T) {
	t.Parallel()

	desc := TrainersServiceDesc.Methods[0]
	assert.Equal(t, "AcceptInvitation", desc.MethodName)

	dec := func(v any) error {
		return Codec{}.Unmarshal([]byte(`{"token":"abc"}`), v)
	}

	t.Run("without interceptor", func(t *testing.T) {
		srv := &trainersStub{}
		out, err := desc.Handler(srv, context.Background(), dec, nil)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", out.(*Trainer).Email)
		assert.Equal(t, "abc", srv.got.Token)
	})

	t.Run("with interceptor", func(t *testing.T) {
		srv := &trainersStub{}
		var method string
		interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			method = info.FullMethod
			return handler(ctx, req)
		}

		_, err := desc.Handler(srv, context.Background(), dec, interceptor)
		require.NoError(t, err)
		assert.Equal(t, TrainersAcceptInvitation, method)
		assert.Equal(t, "abc", srv.got.Token)
	})
}

func TestServiceDesc_MethodNames(t *testing.T) {
	t.Parallel()

	names := func(d grpc.ServiceDesc) []string {
		var out []string
		for _, m := range d.Methods {
			out = append(out, m.MethodName)
		}
		return out
	}

	assert.Equal(t, []string{"Register", "Login", "Refresh", "Logout", "ChangePassword", "Me",
		"RequestEmailVerification", "VerifyEmail"}, names(AuthServiceDesc))
	assert.Equal(t, []string{"CreateGym", "InviteTrainers", "ResendInvitation", "ListTrainers"}, names(GymsServiceDesc))
	assert.Equal(t, []string{"AcceptInvitation", "VerifyAccessCode"}, names(TrainersServiceDesc))
}

var (
	protoService = regexp.MustCompile(`(?s)service (\w+) \{(.*?)\n\}`)
	protoRPC     = regexp.MustCompile(`rpc (\w+)\(([\w.]+)\) returns \(([\w.]+)\);`)
	protoMessage = regexp.MustCompile(`(?s)message (\w+) \{(.*?)\n\}`)
	protoField   = regexp.MustCompile(`(?m)^\s*(?:repeated )?[\w.]+ (\w+) = \d+;`)
)

func readProto(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "api", "proto", ProtoFile))
	require.NoError(t, err)
	return string(data)
}

func protoTypeName(name string) string {
	return strings.TrimPrefix(name, "google.protobuf.")
}

func TestServiceDesc_MatchesProto(t *testing.T) {
	t.Parallel()

	descs := map[string]grpc.ServiceDesc{
		AuthService:     AuthServiceDesc,
		GymsService:     GymsServiceDesc,
		TrainersService: TrainersServiceDesc,
	}

	services := protoService.FindAllStringSubmatch(readProto(t), -1)
	require.Len(t, services, len(descs))

	for _, svc := range services {
		desc, ok := descs["gymkeeper.v1."+svc[1]]
		require.True(t, ok, "unexpected service %s", svc[1])
		assert.Equal(t, ProtoFile, desc.Metadata)

		handler := reflect.TypeOf(desc.HandlerType).Elem()
		rpcs := protoRPC.FindAllStringSubmatch(svc[2], -1)
		require.Len(t, desc.Methods, len(rpcs), svc[1])

		for i, r := range rpcs {
			assert.Equal(t, r[1], desc.Methods[i].MethodName)

			method, ok := handler.MethodByName(r[1])
			require.True(t, ok, "%s.%s has no Go method", svc[1], r[1])
			assert.Equal(t, protoTypeName(r[2]), method.Type.In(1).Elem().Name(), "%s.%s request", svc[1], r[1])
			assert.Equal(t, protoTypeName(r[3]), method.Type.Out(0).Elem().Name(), "%s.%s response", svc[1], r[1])
		}
	}
}

func TestMessages_MatchProto(t *testing.T) {
	t.Parallel()

	types := map[string]any{
		"RegisterRequest":         RegisterRequest{},
		"LoginRequest":            LoginRequest{},
		"LoginResponse":           LoginResponse{},
		"RefreshRequest":          RefreshRequest{},
		"TokenResponse":           TokenResponse{},
		"ChangePasswordRequest":   ChangePasswordRequest{},
		"VerifyEmailRequest":      VerifyEmailRequest{},
		"User":                    User{},
		"CreateGymRequest":        CreateGymRequest{},
		"Gym":                     Gym{},
		"InviteTrainersRequest":   InviteTrainersRequest{},
		"InviteTrainersResponse":  InviteTrainersResponse{},
		"InviteFailure":           InviteFailure{},
		"ResendInvitationRequest": ResendInvitationRequest{},
		"ListTrainersRequest":     ListTrainersRequest{},
		"ListTrainersResponse":    ListTrainersResponse{},
		"RosterEntry":             RosterEntry{},
		"RosterMembership":        RosterMembership{},
		"AcceptInvitationRequest": AcceptInvitationRequest{},
		"VerifyAccessCodeRequest": VerifyAccessCodeRequest{},
		"Trainer":                 Trainer{},
		"Membership":              Membership{},
	}

	messages := protoMessage.FindAllStringSubmatch(readProto(t), -1)
	require.Len(t, messages, len(types))

	for _, msg := range messages {
		v, ok := types[msg[1]]
		require.True(t, ok, "message %s has no Go type", msg[1])

		var want []string
		for _, f := range protoField.FindAllStringSubmatch(msg[2], -1) {
			want = append(want, f[1])
		}

		var got []string
		rt := reflect.TypeOf(v)
		for i := 0; i < rt.NumField(); i++ {
			tag, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
			got = append(got, tag)
		}

		assert.Equal(t, want, got, msg[1])
	}
}
