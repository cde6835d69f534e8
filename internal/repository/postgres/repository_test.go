package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	db := &Connection{}

	users := NewUserRepository(db)
	gyms := NewGymRepository(db)
	trainers := NewTrainerRepository(db)

	assert.Equal(t, db, users.db)
	assert.Equal(t, db, gyms.db)
	assert.Equal(t, db, trainers.db)
}

func TestConnection_NilPool(t *testing.T) {
	db := &Connection{}

	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping(t.Context()))
}

func TestUniqueConstraint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		constraint string
		ok         bool
	}{
		{"nil", nil, "", false},
		{"plain", errors.New("boom"), "", false},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, "users_email_key", true},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}), "users_username_key", true},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "gyms_owner_id_fkey"}, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			constraint, ok := uniqueConstraint(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.constraint, constraint)
		})
	}
}
