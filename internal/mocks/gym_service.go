package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// GymService is a mock of the gym service consumed by the gRPC handlers.
type GymService struct {
	mock.Mock
}

func (_m *GymService) Create(ctx context.Context, ownerID uuid.UUID, name string) (model.Gym, error) {
	ret := _m.Called(ctx, ownerID, name)
	return ret.Get(0).(model.Gym), ret.Error(1)
}

func NewGymService(t testingT) *GymService {
	m := &GymService{}
	register(t, &m.Mock)
	return m
}

// InvitationService is a mock of the invitation service consumed by the gRPC handlers.
type InvitationService struct {
	mock.Mock
}

func (_m *InvitationService) Invite(ctx context.Context, inviterID, gymID uuid.UUID, emails []string) (model.BatchResult, error) {
	ret := _m.Called(ctx, inviterID, gymID, emails)
	return ret.Get(0).(model.BatchResult), ret.Error(1)
}

func (_m *InvitationService) Resend(ctx context.Context, inviterID, gymID uuid.UUID, email string) (model.TrainerView, error) {
	ret := _m.Called(ctx, inviterID, gymID, email)
	return ret.Get(0).(model.TrainerView), ret.Error(1)
}

func (_m *InvitationService) Accept(ctx context.Context, token string) (model.TrainerView, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(model.TrainerView), ret.Error(1)
}

func (_m *InvitationService) VerifyAccessCode(ctx context.Context, email string, gymID uuid.UUID, code string) (model.TrainerView, error) {
	ret := _m.Called(ctx, email, gymID, code)
	return ret.Get(0).(model.TrainerView), ret.Error(1)
}

func NewInvitationService(t testingT) *InvitationService {
	m := &InvitationService{}
	register(t, &m.Mock)
	return m
}

// RosterService is a mock of the roster service consumed by the gRPC handlers.
type RosterService struct {
	mock.Mock
}

func (_m *RosterService) ListForGym(ctx context.Context, ownerID, gymID uuid.UUID, page model.Page) (model.Roster, error) {
	ret := _m.Called(ctx, ownerID, gymID, page)
	return ret.Get(0).(model.Roster), ret.Error(1)
}

func NewRosterService(t testingT) *RosterService {
	m := &RosterService{}
	register(t, &m.Mock)
	return m
}
