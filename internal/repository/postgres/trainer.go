package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

var _ model.TrainerStore = (*TrainerRepository)(nil)

// TrainerRepository stores trainers as a trainers row plus membership and
// invitation token rows. Writes touching one trainer run in one transaction.
type TrainerRepository struct {
	db *Connection
}

func NewTrainerRepository(db *Connection) *TrainerRepository {
	return &TrainerRepository{
		db: db,
	}
}

func (r *TrainerRepository) AppendMembership(ctx context.Context, email string, membership model.Membership) (model.Trainer, error) {
	var trainer model.Trainer
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		// Upsert locks the trainer row until commit.
		var trainerID uuid.UUID
		err := tx.QueryRow(ctx, `INSERT INTO trainers (email) VALUES ($1)
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id`, email).Scan(&trainerID)
		if err != nil {
			return fmt.Errorf("failed to upsert trainer: %w", err)
		}

		tag, err := tx.Exec(ctx, `INSERT INTO memberships (trainer_id, gym_id, gym_name, access_code)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (trainer_id, gym_id) DO NOTHING`,
			trainerID, membership.GymID, membership.GymName, membership.AccessCode)
		if err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrMembershipExists
		}

		if err := insertTokens(ctx, tx, trainerID, membership.GymID, membership.InvitationTokens); err != nil {
			return err
		}

		trainer, err = loadTrainer(ctx, tx, trainerID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrMembershipExists) {
			return model.Trainer{}, err
		}
		return model.Trainer{}, fmt.Errorf("failed to append membership: %w", err)
	}

	return trainer, nil
}

func (r *TrainerRepository) AcceptInvitation(ctx context.Context, token string, now time.Time) (model.Trainer, uuid.UUID, error) {
	var (
		trainer model.Trainer
		gymID   uuid.UUID
	)
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var trainerID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT m.trainer_id, m.gym_id
			FROM invitation_tokens it
			JOIN memberships m ON m.trainer_id = it.trainer_id AND m.gym_id = it.gym_id
			WHERE it.token = $1 AND it.expires_at > $2 AND NOT m.is_invitation_accepted
			FOR UPDATE OF m`, token, now).Scan(&trainerID, &gymID)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find invitation: %w", err)
		}

		// The token is checked again under the membership lock: a renewal
		// committed while this transaction waited has replaced it.
		tag, err := tx.Exec(ctx, `UPDATE memberships
			SET is_invitation_accepted = TRUE, accepted_at = $3
			WHERE trainer_id = $1 AND gym_id = $2 AND NOT is_invitation_accepted
				AND EXISTS (SELECT 1 FROM invitation_tokens
					WHERE token = $4 AND trainer_id = $1 AND gym_id = $2 AND expires_at > $3)`,
			trainerID, gymID, now, token)
		if err != nil {
			return fmt.Errorf("failed to accept membership: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM invitation_tokens WHERE trainer_id = $1 AND gym_id = $2`,
			trainerID, gymID); err != nil {
			return fmt.Errorf("failed to discard invitation tokens: %w", err)
		}

		trainer, err = loadTrainer(ctx, tx, trainerID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Trainer{}, uuid.Nil, err
		}
		return model.Trainer{}, uuid.Nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	return trainer, gymID, nil
}

func (r *TrainerRepository) RenewInvitation(ctx context.Context, email string, gymID uuid.UUID, accessCode string, token model.InvitationToken) (model.Trainer, error) {
	var trainer model.Trainer
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var (
			trainerID uuid.UUID
			accepted  bool
		)
		err := tx.QueryRow(ctx, `SELECT m.trainer_id, m.is_invitation_accepted
			FROM memberships m
			JOIN trainers t ON t.id = m.trainer_id
			WHERE t.email = $1 AND m.gym_id = $2
			FOR UPDATE OF m`, email, gymID).Scan(&trainerID, &accepted)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find membership: %w", err)
		}
		if accepted {
			return model.ErrMembershipAccepted
		}

		if _, err := tx.Exec(ctx, `UPDATE memberships SET access_code = $3 WHERE trainer_id = $1 AND gym_id = $2`,
			trainerID, gymID, accessCode); err != nil {
			return fmt.Errorf("failed to update access code: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM invitation_tokens WHERE trainer_id = $1 AND gym_id = $2`,
			trainerID, gymID); err != nil {
			return fmt.Errorf("failed to discard invitation tokens: %w", err)
		}

		if err := insertTokens(ctx, tx, trainerID, gymID, []model.InvitationToken{token}); err != nil {
			return err
		}

		trainer, err = loadTrainer(ctx, tx, trainerID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrMembershipAccepted) {
			return model.Trainer{}, err
		}
		return model.Trainer{}, fmt.Errorf("failed to renew invitation: %w", err)
	}

	return trainer, nil
}

func (r *TrainerRepository) GetByEmail(ctx context.Context, email string) (model.Trainer, error) {
	var trainerID uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM trainers WHERE email = $1`, email).Scan(&trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Trainer{}, model.ErrNotFound
		}
		return model.Trainer{}, fmt.Errorf("failed to get trainer by email: %w", err)
	}

	return loadTrainer(ctx, r.db, trainerID)
}

// ListByGym never reads invitation tokens.
func (r *TrainerRepository) ListByGym(ctx context.Context, gymID uuid.UUID, limit, offset int) ([]model.Trainer, error) {
	query := `SELECT t.id, t.email, t.created_at, t.updated_at,
			m.gym_id, m.gym_name, m.access_code, m.is_invitation_accepted, m.created_at, m.accepted_at
		FROM memberships m
		JOIN trainers t ON t.id = m.trainer_id
		WHERE m.gym_id = $1
		ORDER BY t.email
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, gymID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainers by gym: %w", err)
	}
	defer rows.Close()

	var trainers []model.Trainer
	for rows.Next() {
		var (
			t model.Trainer
			m model.Membership
		)
		if err := rows.Scan(
			&t.ID, &t.Email, &t.CreatedAt, &t.UpdatedAt,
			&m.GymID, &m.GymName, &m.AccessCode, &m.IsInvitationAccepted, &m.CreatedAt, &m.AcceptedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trainer: %w", err)
		}
		t.Memberships = []model.Membership{m}
		trainers = append(trainers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trainers: %w", err)
	}

	return trainers, nil
}

func (r *TrainerRepository) HasMembers(ctx context.Context, gymID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM memberships WHERE gym_id = $1)`, gymID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check gym memberships: %w", err)
	}
	return exists, nil
}

func insertTokens(ctx context.Context, q querier, trainerID, gymID uuid.UUID, tokens []model.InvitationToken) error {
	for _, it := range tokens {
		if _, err := q.Exec(ctx, `INSERT INTO invitation_tokens (token, trainer_id, gym_id, expires_at)
			VALUES ($1, $2, $3, $4)`, it.Token, trainerID, gymID, it.ExpiresAt); err != nil {
			return fmt.Errorf("failed to insert invitation token: %w", err)
		}
	}
	return nil
}

// loadTrainer reads a trainer with all memberships and their tokens.
func loadTrainer(ctx context.Context, q querier, trainerID uuid.UUID) (model.Trainer, error) {
	var t model.Trainer
	err := q.QueryRow(ctx, `SELECT id, email, created_at, updated_at FROM trainers WHERE id = $1`, trainerID).
		Scan(&t.ID, &t.Email, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Trainer{}, model.ErrNotFound
		}
		return model.Trainer{}, fmt.Errorf("failed to get trainer: %w", err)
	}

	rows, err := q.Query(ctx, `SELECT gym_id, gym_name, access_code, is_invitation_accepted, created_at, accepted_at
		FROM memberships WHERE trainer_id = $1 ORDER BY created_at, gym_id`, trainerID)
	if err != nil {
		return model.Trainer{}, fmt.Errorf("failed to get memberships: %w", err)
	}
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.GymID, &m.GymName, &m.AccessCode, &m.IsInvitationAccepted, &m.CreatedAt, &m.AcceptedAt); err != nil {
			rows.Close()
			return model.Trainer{}, fmt.Errorf("failed to scan membership: %w", err)
		}
		t.Memberships = append(t.Memberships, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.Trainer{}, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	rows, err = q.Query(ctx, `SELECT gym_id, token, expires_at
		FROM invitation_tokens WHERE trainer_id = $1 ORDER BY expires_at`, trainerID)
	if err != nil {
		return model.Trainer{}, fmt.Errorf("failed to get invitation tokens: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			gymID uuid.UUID
			it    model.InvitationToken
		)
		if err := rows.Scan(&gymID, &it.Token, &it.ExpiresAt); err != nil {
			return model.Trainer{}, fmt.Errorf("failed to scan invitation token: %w", err)
		}
		for i := range t.Memberships {
			if t.Memberships[i].GymID == gymID {
				t.Memberships[i].InvitationTokens = append(t.Memberships[i].InvitationTokens, it)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return model.Trainer{}, fmt.Errorf("failed to iterate invitation tokens: %w", err)
	}

	return t, nil
}
