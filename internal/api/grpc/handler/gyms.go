package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/api/grpc/rpc"
	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// GymService creates gyms.
type GymService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name string) (model.Gym, error)
}

// InvitationService manages trainer invitations.
type InvitationService interface {
	Invite(ctx context.Context, inviterID, gymID uuid.UUID, emails []string) (model.BatchResult, error)
	Resend(ctx context.Context, inviterID, gymID uuid.UUID, email string) (model.TrainerView, error)
	Accept(ctx context.Context, token string) (model.TrainerView, error)
	VerifyAccessCode(ctx context.Context, email string, gymID uuid.UUID, code string) (model.TrainerView, error)
}

// RosterService lists the trainers of a gym.
type RosterService interface {
	ListForGym(ctx context.Context, ownerID, gymID uuid.UUID, page model.Page) (model.Roster, error)
}

var _ rpc.GymsServer = (*Gyms)(nil)

// Gyms handles gym owner endpoints. Every method requires an authenticated caller.
type Gyms struct {
	gymService        GymService
	invitationService InvitationService
	rosterService     RosterService
	contextManager    model.ContextManager
	logger            *logger.Logger
}

func NewGyms(
	gymService GymService,
	invitationService InvitationService,
	rosterService RosterService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Gyms {
	return &Gyms{
		gymService:        gymService,
		invitationService: invitationService,
		rosterService:     rosterService,
		contextManager:    contextManager,
		logger:            logger,
	}
}

func (h *Gyms) CreateGym(ctx context.Context, req *rpc.CreateGymRequest) (*rpc.Gym, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated()
	}

	gym, err := h.gymService.Create(ctx, userID, req.Name)
	if err != nil {
		logFailure(h.logger, "Gyms handler: create gym failed", err,
			"user_id", userID)
		return nil, handleError(err)
	}

	h.logger.Info("Gyms handler: gym created",
		"user_id", userID,
		"gym_id", gym.ID)

	return &rpc.Gym{
		ID:        gym.ID.String(),
		OwnerID:   gym.OwnerID.String(),
		Name:      gym.Name,
		CreatedAt: gym.CreatedAt,
	}, nil
}

// InviteTrainers reports per-address failures in the response body; only
// request level errors such as an unknown gym fail the call.
func (h *Gyms) InviteTrainers(ctx context.Context, req *rpc.InviteTrainersRequest) (*rpc.InviteTrainersResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated()
	}

	gymID, err := parseGymID(req.GymID)
	if err != nil {
		return nil, handleError(err)
	}

	h.logger.Debug("Gyms handler: processing invite request",
		"user_id", userID,
		"gym_id", gymID,
		"count", len(req.Emails))

	result, err := h.invitationService.Invite(ctx, userID, gymID, req.Emails)
	if err != nil {
		logFailure(h.logger, "Gyms handler: invite failed", err,
			"user_id", userID,
			"gym_id", gymID)
		return nil, handleError(err)
	}

	resp := &rpc.InviteTrainersResponse{
		Succeeded: make([]rpc.Trainer, 0, len(result.Succeeded)),
		Failed:    make([]rpc.InviteFailure, 0, len(result.Failed)),
	}
	for _, v := range result.Succeeded {
		resp.Succeeded = append(resp.Succeeded, *toTrainer(v))
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, rpc.InviteFailure{
			Email:  f.Email,
			Reason: f.Reason,
			Kind:   f.Kind,
		})
	}

	h.logger.Info("Gyms handler: invite completed",
		"gym_id", gymID,
		"succeeded", len(resp.Succeeded),
		"failed", len(resp.Failed))

	return resp, nil
}

func (h *Gyms) ResendInvitation(ctx context.Context, req *rpc.ResendInvitationRequest) (*rpc.Trainer, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated()
	}

	gymID, err := parseGymID(req.GymID)
	if err != nil {
		return nil, handleError(err)
	}

	view, err := h.invitationService.Resend(ctx, userID, gymID, req.Email)
	if err != nil {
		logFailure(h.logger, "Gyms handler: resend invitation failed", err,
			"gym_id", gymID)
		return nil, handleError(err)
	}

	return toTrainer(view), nil
}

// ListTrainers returns the gym roster with access codes.
func (h *Gyms) ListTrainers(ctx context.Context, req *rpc.ListTrainersRequest) (*rpc.ListTrainersResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated()
	}

	gymID, err := parseGymID(req.GymID)
	if err != nil {
		return nil, handleError(err)
	}

	roster, err := h.rosterService.ListForGym(ctx, userID, gymID, model.Page{Limit: req.Limit, Offset: req.Offset})
	if err != nil {
		logFailure(h.logger, "Gyms handler: list trainers failed", err,
			"gym_id", gymID)
		return nil, handleError(err)
	}

	return &rpc.ListTrainersResponse{
		Trainers: toRosterEntries(roster.Trainers),
		Accepted: toRosterEntries(roster.Accepted),
		Pending:  toRosterEntries(roster.Pending),
	}, nil
}

func parseGymID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.NewErrValidation(apierror.FieldError{Field: "gym_id", Reason: "must be a UUID"})
	}
	return id, nil
}

func toTrainer(v model.TrainerView) *rpc.Trainer {
	out := &rpc.Trainer{
		Email:       v.Email,
		Memberships: make([]rpc.Membership, 0, len(v.Memberships)),
	}
	for _, m := range v.Memberships {
		out.Memberships = append(out.Memberships, rpc.Membership{
			GymID:                m.GymID.String(),
			GymName:              m.GymName,
			IsInvitationAccepted: m.IsInvitationAccepted,
		})
	}
	return out
}

func toRosterEntries(entries []model.RosterEntry) []rpc.RosterEntry {
	out := make([]rpc.RosterEntry, 0, len(entries))
	for _, e := range entries {
		entry := rpc.RosterEntry{
			Email:       e.Email,
			Memberships: make([]rpc.RosterMembership, 0, len(e.Memberships)),
		}
		for _, m := range e.Memberships {
			entry.Memberships = append(entry.Memberships, rpc.RosterMembership{
				GymID:                m.GymID.String(),
				GymName:              m.GymName,
				IsInvitationAccepted: m.IsInvitationAccepted,
				AccessCode:           m.AccessCode,
			})
		}
		out = append(out, entry)
	}
	return out
}
