package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/mocks"
	"github.com/dtroode/gymkeeper-server/internal/model"
	"github.com/dtroode/gymkeeper-server/internal/testutil"
)

func TestRosters_ListForGym(t *testing.T) {
	ctx := context.Background()
	f := newInvitationFixture()
	other := model.Gym{ID: uuid.New(), OwnerID: uuid.New(), Name: "Elsewhere"}
	gyms := newMemGyms(f.gym, other)
	f.svc.gyms = gyms

	_, err := f.svc.Invite(ctx, f.gym.OwnerID, f.gym.ID, []string{"a@x.com", "b@x.com"})
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, other.OwnerID, other.ID, []string{"a@x.com", "c@x.com"})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, tokenFromLink(t, f.notifier.messages()[0].ActionURL))
	require.NoError(t, err)

	rosters := NewRosters(gyms, f.trainers, testutil.MakeNoopLogger())

	roster, err := rosters.ListForGym(ctx, f.gym.OwnerID, f.gym.ID, model.Page{})
	require.NoError(t, err)

	require.Len(t, roster.Trainers, 2)
	require.Len(t, roster.Accepted, 1)
	require.Len(t, roster.Pending, 1)
	assert.Equal(t, "a@x.com", roster.Accepted[0].Email)
	assert.Equal(t, "b@x.com", roster.Pending[0].Email)

	for _, entry := range roster.Trainers {
		require.Len(t, entry.Memberships, 1)
		assert.Equal(t, f.gym.ID, entry.Memberships[0].GymID)
		assert.Len(t, entry.Memberships[0].AccessCode, 6)
	}
}

func TestRosters_ListForGym_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newInvitationFixture()

	_, err := f.svc.Invite(ctx, f.gym.OwnerID, f.gym.ID, []string{"a@x.com", "b@x.com", "c@x.com"})
	require.NoError(t, err)

	rosters := NewRosters(f.svc.gyms, f.trainers, testutil.MakeNoopLogger())

	roster, err := rosters.ListForGym(ctx, f.gym.OwnerID, f.gym.ID, model.Page{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, roster.Trainers, 2)
	assert.Equal(t, "b@x.com", roster.Trainers[0].Email)
	assert.Equal(t, "c@x.com", roster.Trainers[1].Email)
}

func TestRosters_ListForGym_PastLastPage(t *testing.T) {
	ctx := context.Background()
	f := newInvitationFixture()

	_, err := f.svc.Invite(ctx, f.gym.OwnerID, f.gym.ID, []string{"a@x.com", "b@x.com"})
	require.NoError(t, err)

	rosters := NewRosters(f.svc.gyms, f.trainers, testutil.MakeNoopLogger())

	roster, err := rosters.ListForGym(ctx, f.gym.OwnerID, f.gym.ID, model.Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Empty(t, roster.Trainers)
	assert.Empty(t, roster.Accepted)
	assert.Empty(t, roster.Pending)

	_, err = rosters.ListForGym(ctx, f.gym.OwnerID, f.gym.ID, model.Page{Limit: 2, Offset: 10})
	require.NoError(t, err)
}

func TestRosters_ListForGym_EmptyGymWithOffset(t *testing.T) {
	ctx := context.Background()
	f := newInvitationFixture()
	rosters := NewRosters(f.svc.gyms, f.trainers, testutil.MakeNoopLogger())

	_, err := rosters.ListForGym(ctx, f.gym.OwnerID, f.gym.ID, model.Page{Limit: 2, Offset: 4})
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestRosters_ListForGym_MembershipCheckError(t *testing.T) {
	ctx := context.Background()
	gym := model.Gym{ID: uuid.New(), OwnerID: uuid.New()}

	trainers := mocks.NewTrainerStore(t)
	trainers.On("ListByGym", ctx, gym.ID, 10, 20).Return(nil, nil).Once()
	trainers.On("HasMembers", ctx, gym.ID).Return(false, assert.AnError).Once()

	rosters := NewRosters(newMemGyms(gym), trainers, testutil.MakeNoopLogger())

	_, err := rosters.ListForGym(ctx, gym.OwnerID, gym.ID, model.Page{Limit: 10, Offset: 20})
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestRosters_ListForGym_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newInvitationFixture()
	rosters := NewRosters(f.svc.gyms, f.trainers, testutil.MakeNoopLogger())

	_, err := rosters.ListForGym(ctx, f.gym.OwnerID, f.gym.ID, model.Page{})
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindNotFound, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "no trainers")

	_, err = rosters.ListForGym(ctx, uuid.New(), f.gym.ID, model.Page{})
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestRosters_ListForGym_PageBounds(t *testing.T) {
	ctx := context.Background()
	gym := model.Gym{ID: uuid.New(), OwnerID: uuid.New()}

	tests := []struct {
		name          string
		page          model.Page
		limit, offset int
	}{
		{"defaults", model.Page{}, DefaultPageLimit, 0},
		{"capped", model.Page{Limit: 1000, Offset: 5}, MaxPageLimit, 5},
		{"negative offset", model.Page{Limit: 10, Offset: -3}, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trainers := mocks.NewTrainerStore(t)
			trainers.On("ListByGym", ctx, gym.ID, tt.limit, tt.offset).Return(nil, nil).Once()
			trainers.On("HasMembers", ctx, gym.ID).Return(false, nil).Maybe()

			rosters := NewRosters(newMemGyms(gym), trainers, testutil.MakeNoopLogger())

			_, err := rosters.ListForGym(ctx, gym.OwnerID, gym.ID, tt.page)
			assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
		})
	}
}
