package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// InvitationTTL is the default lifetime of an invitation token.
	InvitationTTL = 72 * time.Hour
	// AccessCodeMin and AccessCodeMax bound the six-digit access code.
	AccessCodeMin = 100000
	AccessCodeMax = 999999
)

// TrainerStore persists trainers and their gym memberships.
//
// AppendMembership and AcceptInvitation are atomic per trainer.
type TrainerStore interface {
	// AppendMembership creates the trainer if absent and adds the membership.
	// Returns ErrMembershipExists if the trainer is already a member of the gym.
	AppendMembership(ctx context.Context, email string, membership Membership) (Trainer, error)
	// AcceptInvitation accepts the membership owning token if the token expires
	// after now and the membership is pending, and discards all its tokens.
	// Returns ErrNotFound otherwise.
	AcceptInvitation(ctx context.Context, token string, now time.Time) (Trainer, uuid.UUID, error)
	// RenewInvitation replaces the access code and invitation tokens of a pending membership.
	RenewInvitation(ctx context.Context, email string, gymID uuid.UUID, accessCode string, token InvitationToken) (Trainer, error)
	GetByEmail(ctx context.Context, email string) (Trainer, error)
	// ListByGym returns trainers with only their membership in gymID and without tokens.
	ListByGym(ctx context.Context, gymID uuid.UUID, limit, offset int) ([]Trainer, error)
	// HasMembers reports whether any trainer has a membership in gymID.
	HasMembers(ctx context.Context, gymID uuid.UUID) (bool, error)
}

// Trainer is a cross-gym identity addressed by email.
type Trainer struct {
	ID          uuid.UUID
	Email       string
	Memberships []Membership
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership links a trainer to one gym.
type Membership struct {
	GymID                uuid.UUID
	GymName              string
	AccessCode           string
	IsInvitationAccepted bool
	InvitationTokens     []InvitationToken
	CreatedAt            time.Time
	AcceptedAt           *time.Time
}

// InvitationToken is a single-use, time-boxed invitation secret.
type InvitationToken struct {
	Token     string
	ExpiresAt time.Time
}

// Membership returns the trainer's membership in gymID.
func (t Trainer) Membership(gymID uuid.UUID) (Membership, bool) {
	for _, m := range t.Memberships {
		if m.GymID == gymID {
			return m, true
		}
	}
	return Membership{}, false
}

// TrainerView is a trainer without secrets.
type TrainerView struct {
	Email       string
	Memberships []MembershipView
}

// MembershipView is a membership without access code and tokens.
type MembershipView struct {
	GymID                uuid.UUID
	GymName              string
	IsInvitationAccepted bool
}

// NewTrainerView strips access codes and invitation tokens.
func NewTrainerView(t Trainer) TrainerView {
	view := TrainerView{Email: t.Email, Memberships: make([]MembershipView, 0, len(t.Memberships))}
	for _, m := range t.Memberships {
		view.Memberships = append(view.Memberships, MembershipView{
			GymID:                m.GymID,
			GymName:              m.GymName,
			IsInvitationAccepted: m.IsInvitationAccepted,
		})
	}
	return view
}

// InviteFailure describes a rejected address of an invite batch.
type InviteFailure struct {
	Email  string
	Reason string
	Kind   string
}

// BatchResult is the outcome of an invite batch.
type BatchResult struct {
	Succeeded []TrainerView
	Failed    []InviteFailure
}

// RosterMembership is a membership as shown to the gym owner.
type RosterMembership struct {
	GymID                uuid.UUID
	GymName              string
	IsInvitationAccepted bool
	AccessCode           string
}

// RosterEntry is a trainer as shown to the gym owner.
type RosterEntry struct {
	Email       string
	Memberships []RosterMembership
}

// Roster lists the trainers of a gym split by invitation state.
type Roster struct {
	Trainers []RosterEntry
	Accepted []RosterEntry
	Pending  []RosterEntry
}

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}
