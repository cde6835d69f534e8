package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/mocks"
	"github.com/dtroode/gymkeeper-server/internal/model"
	"github.com/dtroode/gymkeeper-server/internal/testutil"
	"github.com/dtroode/gymkeeper-server/internal/token"
)

func newTestJWT(clock *time.Time) *token.JWT {
	opts := token.Options{
		AccessSecret:       "access",
		RefreshSecret:      "refresh",
		VerificationSecret: "verification",
	}
	if clock != nil {
		opts.Now = func() time.Time { return *clock }
	}
	return token.NewJWT(opts)
}

func seedUser(t *testing.T, users *memUsers, username, email string) model.User {
	t.Helper()
	u, err := users.Create(context.Background(), model.User{Username: username, Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	return u
}

func TestTokenService_Issue(t *testing.T) {
	ctx := context.Background()
	user := model.User{ID: uuid.New(), Email: "sam@x.com", Username: "sam", FullName: "Sam"}

	manager := mocks.NewTokenManager(t)
	users := mocks.NewUserStore(t)

	manager.On("GenerateAccessToken", model.AccessClaims{
		UserID: user.ID, Email: "sam@x.com", Username: "sam", FullName: "Sam",
	}).Return("access", nil).Once()
	manager.On("GenerateRefreshToken", user.ID).Return("refresh", nil).Once()
	users.On("SetRefreshTokenHash", ctx, user.ID, hashRefresh("refresh")).Return(nil).Once()

	svc := NewTokenService(manager, users, testutil.MakeNoopLogger())

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, model.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, pair)
}

func TestTokenService_Issue_Errors(t *testing.T) {
	ctx := context.Background()
	user := model.User{ID: uuid.New()}

	t.Run("manager error", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		users := mocks.NewUserStore(t)
		manager.On("GenerateAccessToken", mock.Anything).Return("", assert.AnError).Once()

		_, err := NewTokenService(manager, users, testutil.MakeNoopLogger()).Issue(ctx, user)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("store error", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		users := mocks.NewUserStore(t)
		manager.On("GenerateAccessToken", mock.Anything).Return("access", nil).Once()
		manager.On("GenerateRefreshToken", user.ID).Return("refresh", nil).Once()
		users.On("SetRefreshTokenHash", ctx, user.ID, mock.Anything).Return(assert.AnError).Once()

		_, err := NewTokenService(manager, users, testutil.MakeNoopLogger()).Issue(ctx, user)
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestTokenService_Refresh_Failures(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	presented := "presented"

	tests := []struct {
		name    string
		setup   func(manager *mocks.TokenManager, users *mocks.UserStore)
		wantErr error
	}{
		{
			name: "unverifiable token",
			setup: func(manager *mocks.TokenManager, _ *mocks.UserStore) {
				manager.On("ParseRefreshToken", presented).Return(uuid.Nil, assert.AnError).Once()
			},
			wantErr: assert.AnError,
		},
		{
			name: "user deleted",
			setup: func(manager *mocks.TokenManager, users *mocks.UserStore) {
				manager.On("ParseRefreshToken", presented).Return(userID, nil).Once()
				users.On("GetByID", ctx, userID).Return(model.User{}, model.ErrNotFound).Once()
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "revoked",
			setup: func(manager *mocks.TokenManager, users *mocks.UserStore) {
				manager.On("ParseRefreshToken", presented).Return(userID, nil).Once()
				users.On("GetByID", ctx, userID).Return(model.User{ID: userID}, nil).Once()
			},
			wantErr: model.ErrTokenRevoked,
		},
		{
			name: "stale token",
			setup: func(manager *mocks.TokenManager, users *mocks.UserStore) {
				manager.On("ParseRefreshToken", presented).Return(userID, nil).Once()
				users.On("GetByID", ctx, userID).
					Return(model.User{ID: userID, RefreshTokenHash: hashRefresh("newer")}, nil).Once()
			},
			wantErr: model.ErrTokenMismatch,
		},
		{
			name: "lost rotation race",
			setup: func(manager *mocks.TokenManager, users *mocks.UserStore) {
				manager.On("ParseRefreshToken", presented).Return(userID, nil).Once()
				users.On("GetByID", ctx, userID).
					Return(model.User{ID: userID, RefreshTokenHash: hashRefresh(presented)}, nil).Once()
				manager.On("GenerateAccessToken", mock.Anything).Return("access", nil).Once()
				manager.On("GenerateRefreshToken", userID).Return("next", nil).Once()
				users.On("SwapRefreshTokenHash", ctx, userID, hashRefresh(presented), hashRefresh("next")).
					Return(false, nil).Once()
			},
			wantErr: model.ErrTokenReused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := mocks.NewTokenManager(t)
			users := mocks.NewUserStore(t)
			tt.setup(manager, users)

			svc := NewTokenService(manager, users, testutil.MakeNoopLogger())

			_, err := svc.Refresh(ctx, presented)
			require.Error(t, err)
			assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
			assert.ErrorIs(t, err, tt.wantErr)

			apiErr, _ := apierror.As(err)
			assert.Equal(t, "invalid refresh token", apiErr.Message)
		})
	}
}

func TestTokenService_Refresh_StoreErrorIsNotUnauthorized(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	manager := mocks.NewTokenManager(t)
	users := mocks.NewUserStore(t)
	manager.On("ParseRefreshToken", "t").Return(userID, nil).Once()
	users.On("GetByID", ctx, userID).Return(model.User{}, errors.New("connection reset")).Once()

	_, err := NewTokenService(manager, users, testutil.MakeNoopLogger()).Refresh(ctx, "t")
	require.Error(t, err)
	_, isAPI := apierror.As(err)
	assert.False(t, isAPI)
}

func TestTokenService_Refresh_RotateOnUse(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	user := seedUser(t, users, "sam", "sam@x.com")
	svc := NewTokenService(newTestJWT(nil), users, testutil.MakeNoopLogger())

	first, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))

	third, err := svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, third.AccessToken)
}

func TestTokenService_Issue_ReplacesPreviousRefresh(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	user := seedUser(t, users, "sam", "sam@x.com")
	svc := NewTokenService(newTestJWT(nil), users, testutil.MakeNoopLogger())

	first, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, user)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestTokenService_Refresh_ConcurrentReplay(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	user := seedUser(t, users, "sam", "sam@x.com")
	svc := NewTokenService(newTestJWT(nil), users, testutil.MakeNoopLogger())

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	user := seedUser(t, users, "sam", "sam@x.com")
	svc := NewTokenService(newTestJWT(nil), users, testutil.MakeNoopLogger())

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, user.ID))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenRevoked)

	// A new login restores rotation.
	pair, err = svc.Issue(ctx, user)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestTokenService_AccessExpiresRefreshStillRotates(t *testing.T) {
	ctx := context.Background()
	clock := time.Unix(1_700_000_000, 0)
	jwt := newTestJWT(&clock)
	users := newMemUsers()
	user := seedUser(t, users, "sam", "sam@x.com")

	svc := NewTokenService(jwt, users, testutil.MakeNoopLogger())
	guard := NewSession(jwt, users, testutil.MakeNoopLogger())

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	principal, err := guard.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)

	clock = clock.Add(token.DefaultAccessTTL)

	_, err = guard.Authenticate(ctx, pair.AccessToken)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = guard.Authenticate(ctx, next.AccessToken)
	require.NoError(t, err)
}
