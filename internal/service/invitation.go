package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// InvitationOptions configures invitation lifetime and the confirmation link.
type InvitationOptions struct {
	TTL        time.Duration
	ConfirmURL string
}

// Invitations implements the trainer invitation lifecycle.
type Invitations struct {
	gyms       model.GymStore
	trainers   model.TrainerStore
	notifier   model.Notifier
	ttl        time.Duration
	confirmURL string
	logger     *logger.Logger

	now      func() time.Time
	newToken func() (string, error)
	newCode  func() (string, error)
}

func NewInvitations(
	gyms model.GymStore,
	trainers model.TrainerStore,
	notifier model.Notifier,
	opts InvitationOptions,
	logger *logger.Logger,
) *Invitations {
	if opts.TTL <= 0 {
		opts.TTL = model.InvitationTTL
	}
	return &Invitations{
		gyms:       gyms,
		trainers:   trainers,
		notifier:   notifier,
		ttl:        opts.TTL,
		confirmURL: opts.ConfirmURL,
		logger:     logger,
		now:        time.Now,
		newToken:   newInvitationToken,
		newCode:    newAccessCode,
	}
}

// Invite invites every address to the inviter's gym. Addresses fail
// independently; only a missing gym rejects the whole batch.
func (s *Invitations) Invite(ctx context.Context, inviterID, gymID uuid.UUID, emails []string) (model.BatchResult, error) {
	gym, err := ownedGym(ctx, s.gyms, inviterID, gymID)
	if err != nil {
		return model.BatchResult{}, err
	}

	s.logger.Debug("Invitation service: inviting trainers",
		"gym_id", gymID,
		"count", len(emails))

	result := model.BatchResult{
		Succeeded: []model.TrainerView{},
		Failed:    []model.InviteFailure{},
	}

	for _, raw := range emails {
		trainer, err := s.inviteOne(ctx, gym, raw)
		if err != nil {
			result.Failed = append(result.Failed, newInviteFailure(raw, err))
			continue
		}
		result.Succeeded = append(result.Succeeded, model.NewTrainerView(trainer))
	}

	s.logger.Info("Invitation service: batch completed",
		"gym_id", gymID,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed))

	return result, nil
}

func (s *Invitations) inviteOne(ctx context.Context, gym model.Gym, raw string) (model.Trainer, error) {
	email := normalize(raw)
	if !isEmail(email) {
		return model.Trainer{}, apierror.NewErrInvalidEmail(raw)
	}

	code, token, err := s.secrets()
	if err != nil {
		return model.Trainer{}, err
	}

	trainer, err := s.trainers.AppendMembership(ctx, email, model.Membership{
		GymID:            gym.ID,
		GymName:          gym.Name,
		AccessCode:       code,
		InvitationTokens: []model.InvitationToken{token},
	})
	if errors.Is(err, model.ErrMembershipExists) {
		return model.Trainer{}, apierror.NewErrMembershipExists(email)
	}
	if err != nil {
		s.logger.Error("Invitation service: failed to append membership",
			"gym_id", gym.ID,
			"error", err.Error())
		return model.Trainer{}, fmt.Errorf("failed to append membership: %w", err)
	}

	if err := s.notify(ctx, email, gym.Name, code, token.Token); err != nil {
		return model.Trainer{}, err
	}

	return trainer, nil
}

// Resend replaces the access code and invitation tokens of a pending
// membership and notifies the trainer again. Old tokens stop working.
func (s *Invitations) Resend(ctx context.Context, inviterID, gymID uuid.UUID, email string) (model.TrainerView, error) {
	gym, err := ownedGym(ctx, s.gyms, inviterID, gymID)
	if err != nil {
		return model.TrainerView{}, err
	}

	email = normalize(email)
	if !isEmail(email) {
		return model.TrainerView{}, apierror.NewErrInvalidEmail(email)
	}

	code, token, err := s.secrets()
	if err != nil {
		return model.TrainerView{}, err
	}

	trainer, err := s.trainers.RenewInvitation(ctx, email, gym.ID, code, token)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.TrainerView{}, apierror.NewErrMembershipNotFound(email)
	case errors.Is(err, model.ErrMembershipAccepted):
		return model.TrainerView{}, apierror.NewErrMembershipAccepted(email)
	case err != nil:
		return model.TrainerView{}, fmt.Errorf("failed to renew invitation: %w", err)
	}

	if err := s.notify(ctx, email, gym.Name, code, token.Token); err != nil {
		return model.TrainerView{}, err
	}

	s.logger.Info("Invitation service: invitation resent",
		"gym_id", gym.ID,
		"trainer_id", trainer.ID)

	return model.NewTrainerView(trainer), nil
}

// Accept accepts the membership owning token. Unknown, expired and already
// used tokens are reported with the same error.
func (s *Invitations) Accept(ctx context.Context, token string) (model.TrainerView, error) {
	if token == "" {
		return model.TrainerView{}, apierror.NewErrInvalidInvitation(nil)
	}

	trainer, gymID, err := s.trainers.AcceptInvitation(ctx, token, s.now())
	if errors.Is(err, model.ErrNotFound) {
		return model.TrainerView{}, apierror.NewErrInvalidInvitation(err)
	}
	if err != nil {
		s.logger.Error("Invitation service: failed to accept invitation",
			"error", err.Error())
		return model.TrainerView{}, fmt.Errorf("failed to accept invitation: %w", err)
	}

	s.logger.Info("Invitation service: invitation accepted",
		"trainer_id", trainer.ID,
		"gym_id", gymID)

	return model.NewTrainerView(trainer), nil
}

// VerifyAccessCode checks the access code of an accepted membership.
// Every mismatch is reported with the same error.
func (s *Invitations) VerifyAccessCode(ctx context.Context, email string, gymID uuid.UUID, code string) (model.TrainerView, error) {
	trainer, err := s.trainers.GetByEmail(ctx, normalize(email))
	if errors.Is(err, model.ErrNotFound) {
		return model.TrainerView{}, apierror.NewErrInvalidAccessCode(err)
	}
	if err != nil {
		return model.TrainerView{}, fmt.Errorf("failed to get trainer by email: %w", err)
	}

	m, ok := trainer.Membership(gymID)
	if !ok || !m.IsInvitationAccepted {
		return model.TrainerView{}, apierror.NewErrInvalidAccessCode(nil)
	}
	if subtle.ConstantTimeCompare([]byte(m.AccessCode), []byte(code)) != 1 {
		return model.TrainerView{}, apierror.NewErrInvalidAccessCode(nil)
	}

	return model.NewTrainerView(trainer), nil
}

func (s *Invitations) secrets() (string, model.InvitationToken, error) {
	code, err := s.newCode()
	if err != nil {
		return "", model.InvitationToken{}, err
	}
	token, err := s.newToken()
	if err != nil {
		return "", model.InvitationToken{}, err
	}
	return code, model.InvitationToken{Token: token, ExpiresAt: s.now().Add(s.ttl)}, nil
}

func (s *Invitations) notify(ctx context.Context, email, gymName, code, token string) error {
	err := s.notifier.Send(ctx, model.Message{
		To:          email,
		Subject:     fmt.Sprintf("Invitation to %s", gymName),
		Title:       fmt.Sprintf("You are invited to join %s", gymName),
		Body:        "Use the access code below to sign in as a trainer once you accept the invitation.",
		AccessCode:  code,
		ActionURL:   withToken(s.confirmURL, token),
		ActionLabel: "Accept invitation",
	})
	if err != nil {
		s.logger.Warn("Invitation service: notification failed, membership kept",
			"gym_name", gymName,
			"error", err.Error())
		return apierror.NewErrDeliveryFailed(err)
	}
	return nil
}

func newInviteFailure(email string, err error) model.InviteFailure {
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.NewErrInternalServerError(err)
	}
	return model.InviteFailure{
		Email:  email,
		Reason: apiErr.Message,
		Kind:   string(apiErr.Kind),
	}
}
