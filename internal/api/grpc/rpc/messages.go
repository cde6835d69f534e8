package rpc

import "time"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	// Login is a username or an email.
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateGymRequest struct {
	Name string `json:"name"`
}

type Gym struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type InviteTrainersRequest struct {
	GymID  string   `json:"gym_id"`
	Emails []string `json:"emails"`
}

type InviteTrainersResponse struct {
	Succeeded []Trainer       `json:"succeeded"`
	Failed    []InviteFailure `json:"failed"`
}

type InviteFailure struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
	Kind   string `json:"kind"`
}

type ResendInvitationRequest struct {
	GymID string `json:"gym_id"`
	Email string `json:"email"`
}

type ListTrainersRequest struct {
	GymID  string `json:"gym_id"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type ListTrainersResponse struct {
	Trainers []RosterEntry `json:"trainers"`
	Accepted []RosterEntry `json:"accepted"`
	Pending  []RosterEntry `json:"pending"`
}

// RosterEntry is a trainer as the gym owner sees it, access code included.
type RosterEntry struct {
	Email       string             `json:"email"`
	Memberships []RosterMembership `json:"memberships"`
}

type RosterMembership struct {
	GymID                string `json:"gym_id"`
	GymName              string `json:"gym_name"`
	IsInvitationAccepted bool   `json:"is_invitation_accepted"`
	AccessCode           string `json:"access_code"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

type VerifyAccessCodeRequest struct {
	Email      string `json:"email"`
	GymID      string `json:"gym_id"`
	AccessCode string `json:"access_code"`
}

// Trainer never carries access codes or invitation tokens.
type Trainer struct {
	Email       string       `json:"email"`
	Memberships []Membership `json:"memberships"`
}

type Membership struct {
	GymID                string `json:"gym_id"`
	GymName              string `json:"gym_name"`
	IsInvitationAccepted bool   `json:"is_invitation_accepted"`
}
