package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

// memUsers is an in-memory UserStore with the same atomicity as the Postgres one.
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

var _ model.UserStore = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uuid.UUID]model.User)}
}

func (s *memUsers) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return model.User{}, model.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return model.User{}, model.ErrEmailTaken
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

func (s *memUsers) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *memUsers) GetByLogin(_ context.Context, login string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *memUsers) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(id, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (s *memUsers) MarkEmailVerified(_ context.Context, id uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.Email != email {
		return model.ErrNotFound
	}
	u.EmailVerified = true
	s.users[id] = u
	return nil
}

func (s *memUsers) SetRefreshTokenHash(_ context.Context, userID uuid.UUID, tokenHash string) error {
	return s.update(userID, func(u *model.User) { u.RefreshTokenHash = tokenHash })
}

func (s *memUsers) SwapRefreshTokenHash(_ context.Context, userID uuid.UUID, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.RefreshTokenHash != current {
		return false, nil
	}
	u.RefreshTokenHash = next
	s.users[userID] = u
	return true, nil
}

func (s *memUsers) ClearRefreshTokenHash(_ context.Context, userID uuid.UUID) error {
	return s.update(userID, func(u *model.User) { u.RefreshTokenHash = "" })
}

func (s *memUsers) delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *memUsers) update(id uuid.UUID, fn func(*model.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.ErrNotFound
	}
	fn(&u)
	s.users[id] = u
	return nil
}

// memGyms is an in-memory GymStore.
type memGyms struct {
	mu   sync.Mutex
	gyms map[uuid.UUID]model.Gym
}

var _ model.GymStore = (*memGyms)(nil)

func newMemGyms(gyms ...model.Gym) *memGyms {
	s := &memGyms{gyms: make(map[uuid.UUID]model.Gym)}
	for _, g := range gyms {
		s.gyms[g.ID] = g
	}
	return s
}

func (s *memGyms) Create(_ context.Context, gym model.Gym) (model.Gym, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gym.ID = uuid.New()
	gym.CreatedAt = time.Now()
	s.gyms[gym.ID] = gym
	return gym, nil
}

func (s *memGyms) GetByID(_ context.Context, id uuid.UUID) (model.Gym, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gyms[id]
	if !ok {
		return model.Gym{}, model.ErrNotFound
	}
	return g, nil
}

// memTrainers is an in-memory TrainerStore, atomic per call.
type memTrainers struct {
	mu       sync.Mutex
	trainers map[string]*model.Trainer
}

var _ model.TrainerStore = (*memTrainers)(nil)

func newMemTrainers() *memTrainers {
	return &memTrainers{trainers: make(map[string]*model.Trainer)}
}

func (s *memTrainers) AppendMembership(_ context.Context, email string, membership model.Membership) (model.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trainers[email]
	if !ok {
		t = &model.Trainer{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
		s.trainers[email] = t
	}
	if _, exists := t.Membership(membership.GymID); exists {
		return model.Trainer{}, model.ErrMembershipExists
	}

	membership.CreatedAt = time.Now()
	t.Memberships = append(t.Memberships, membership)
	t.UpdatedAt = time.Now()
	return copyTrainer(*t), nil
}

func (s *memTrainers) AcceptInvitation(_ context.Context, token string, now time.Time) (model.Trainer, uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.trainers {
		for i := range t.Memberships {
			m := &t.Memberships[i]
			if m.IsInvitationAccepted {
				continue
			}
			for _, it := range m.InvitationTokens {
				if it.Token == token && it.ExpiresAt.After(now) {
					m.IsInvitationAccepted = true
					m.AcceptedAt = &now
					m.InvitationTokens = nil
					return copyTrainer(*t), m.GymID, nil
				}
			}
		}
	}
	return model.Trainer{}, uuid.Nil, model.ErrNotFound
}

func (s *memTrainers) RenewInvitation(_ context.Context, email string, gymID uuid.UUID, accessCode string, token model.InvitationToken) (model.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trainers[email]
	if !ok {
		return model.Trainer{}, model.ErrNotFound
	}
	for i := range t.Memberships {
		m := &t.Memberships[i]
		if m.GymID != gymID {
			continue
		}
		if m.IsInvitationAccepted {
			return model.Trainer{}, model.ErrMembershipAccepted
		}
		m.AccessCode = accessCode
		m.InvitationTokens = []model.InvitationToken{token}
		return copyTrainer(*t), nil
	}
	return model.Trainer{}, model.ErrNotFound
}

func (s *memTrainers) GetByEmail(_ context.Context, email string) (model.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trainers[email]
	if !ok {
		return model.Trainer{}, model.ErrNotFound
	}
	return copyTrainer(*t), nil
}

func (s *memTrainers) ListByGym(_ context.Context, gymID uuid.UUID, limit, offset int) ([]model.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Trainer
	for _, t := range s.trainers {
		m, ok := t.Membership(gymID)
		if !ok {
			continue
		}
		m.InvitationTokens = nil
		out = append(out, model.Trainer{ID: t.ID, Email: t.Email, Memberships: []model.Membership{m}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memTrainers) HasMembers(_ context.Context, gymID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.trainers {
		if _, ok := t.Membership(gymID); ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *memTrainers) membership(email string, gymID uuid.UUID) (model.Membership, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trainers[email]
	if !ok {
		return model.Membership{}, false
	}
	return t.Membership(gymID)
}

func copyTrainer(t model.Trainer) model.Trainer {
	ms := make([]model.Membership, len(t.Memberships))
	for i, m := range t.Memberships {
		m.InvitationTokens = append([]model.InvitationToken(nil), m.InvitationTokens...)
		ms[i] = m
	}
	t.Memberships = ms
	return t
}

// recordingNotifier remembers sent messages and fails for listed recipients.
type recordingNotifier struct {
	mu     sync.Mutex
	sent   []model.Message
	failTo map[string]error
}

func (n *recordingNotifier) Send(_ context.Context, msg model.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err, ok := n.failTo[msg.To]; ok {
		return err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) messages() []model.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Message(nil), n.sent...)
}
