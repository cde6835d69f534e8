package handler

import (
	"context"

	"github.com/dtroode/gymkeeper-server/internal/api/grpc/rpc"
	"github.com/dtroode/gymkeeper-server/internal/logger"
)

var _ rpc.TrainersServer = (*Trainers)(nil)

// Trainers handles the unauthenticated trainer endpoints.
type Trainers struct {
	invitationService InvitationService
	logger            *logger.Logger
}

func NewTrainers(invitationService InvitationService, logger *logger.Logger) *Trainers {
	return &Trainers{
		invitationService: invitationService,
		logger:            logger,
	}
}

func (h *Trainers) AcceptInvitation(ctx context.Context, req *rpc.AcceptInvitationRequest) (*rpc.Trainer, error) {
	view, err := h.invitationService.Accept(ctx, req.Token)
	if err != nil {
		logFailure(h.logger, "Trainers handler: accept invitation rejected", err)
		return nil, handleError(err)
	}

	h.logger.Info("Trainers handler: invitation accepted",
		"email", view.Email)

	return toTrainer(view), nil
}

func (h *Trainers) VerifyAccessCode(ctx context.Context, req *rpc.VerifyAccessCodeRequest) (*rpc.Trainer, error) {
	gymID, err := parseGymID(req.GymID)
	if err != nil {
		return nil, handleError(err)
	}

	view, err := h.invitationService.VerifyAccessCode(ctx, req.Email, gymID, req.AccessCode)
	if err != nil {
		logFailure(h.logger, "Trainers handler: access code verification rejected", err,
			"gym_id", gymID)
		return nil, handleError(err)
	}

	return toTrainer(view), nil
}
