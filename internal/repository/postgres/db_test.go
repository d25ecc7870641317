package postgres

import (
	"errors"
	"fmt"
	"testing"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"No rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"Duplicate application", &pgconn.PgError{Code: "23505", ConstraintName: "uq_applications_candidate_job"}, domain.ErrConflict},
		{"Duplicate chat pair wrapped", fmt.Errorf("insert chat: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_chats_pair"}), domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.want)
		})
	}

	t.Run("Other driver errors pass through", func(t *testing.T) {
		check := &pgconn.PgError{Code: "23514", ConstraintName: "ck_chats_sorted_pair"}
		got := mapError(check)
		assert.False(t, errors.Is(got, domain.ErrConflict))
		assert.Same(t, error(check), got)
	})

	assert.NoError(t, mapError(nil))
}
