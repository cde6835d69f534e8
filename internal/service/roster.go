package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Rosters builds per-gym trainer listings.
type Rosters struct {
	gyms     model.GymStore
	trainers model.TrainerStore
	logger   *logger.Logger
}

func NewRosters(gyms model.GymStore, trainers model.TrainerStore, logger *logger.Logger) *Rosters {
	return &Rosters{gyms: gyms, trainers: trainers, logger: logger}
}

// ListForGym returns a page of the gym's trainers, each limited to its
// membership in that gym and without invitation tokens.
func (s *Rosters) ListForGym(ctx context.Context, ownerID, gymID uuid.UUID, page model.Page) (model.Roster, error) {
	if _, err := ownedGym(ctx, s.gyms, ownerID, gymID); err != nil {
		return model.Roster{}, err
	}

	page = normalizePage(page)

	trainers, err := s.trainers.ListByGym(ctx, gymID, page.Limit, page.Offset)
	if err != nil {
		s.logger.Error("Roster service: failed to list trainers",
			"gym_id", gymID,
			"error", err.Error())
		return model.Roster{}, fmt.Errorf("failed to list trainers: %w", err)
	}

	roster := model.Roster{
		Trainers: []model.RosterEntry{},
		Accepted: []model.RosterEntry{},
		Pending:  []model.RosterEntry{},
	}
	for _, t := range trainers {
		m, ok := t.Membership(gymID)
		if !ok {
			continue
		}
		entry := model.RosterEntry{
			Email: t.Email,
			Memberships: []model.RosterMembership{{
				GymID:                m.GymID,
				GymName:              m.GymName,
				IsInvitationAccepted: m.IsInvitationAccepted,
				AccessCode:           m.AccessCode,
			}},
		}
		roster.Trainers = append(roster.Trainers, entry)
		if m.IsInvitationAccepted {
			roster.Accepted = append(roster.Accepted, entry)
		} else {
			roster.Pending = append(roster.Pending, entry)
		}
	}

	if len(roster.Trainers) == 0 {
		return s.emptyPage(ctx, gymID, page, roster)
	}

	return roster, nil
}

// emptyPage tells a page past the end of the roster apart from a gym
// without trainers.
func (s *Rosters) emptyPage(ctx context.Context, gymID uuid.UUID, page model.Page, roster model.Roster) (model.Roster, error) {
	if page.Offset == 0 {
		return model.Roster{}, apierror.NewErrNoTrainers(gymID.String())
	}

	exists, err := s.trainers.HasMembers(ctx, gymID)
	if err != nil {
		s.logger.Error("Roster service: failed to check gym memberships",
			"gym_id", gymID,
			"error", err.Error())
		return model.Roster{}, fmt.Errorf("failed to check gym memberships: %w", err)
	}
	if !exists {
		return model.Roster{}, apierror.NewErrNoTrainers(gymID.String())
	}

	return roster, nil
}

func normalizePage(p model.Page) model.Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
