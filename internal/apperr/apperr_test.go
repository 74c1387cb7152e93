package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/gabinete/internal/apperr"
	"github.com/gosuda/gabinete/internal/domain"
)

func TestTranslate_Nil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, apperr.Translate(context.Background(), nil, "op"))
}

func TestTranslate_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind apperr.Kind
		wantCode string
		status   int
	}{
		{"not found sentinel", fmt.Errorf("repo: %w", domain.ErrNotFound), apperr.KindNotFound, "not_found", http.StatusNotFound},
		{"no rows", pgx.ErrNoRows, apperr.KindNotFound, "not_found", http.StatusNotFound},
		{"field error", domain.Invalid("title", "required", "title is required"), apperr.KindValidation, "required", http.StatusBadRequest},
		{"invalid transition", domain.ErrInvalidTransition, apperr.KindValidation, "invalid_transition", http.StatusBadRequest},
		{"in use", domain.ErrInUse, apperr.KindValidation, "in_use", http.StatusBadRequest},
		{"unauthorized", domain.ErrUnauthorized, apperr.KindAuthentication, "no_session", http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, apperr.KindAuthorization, "forbidden", http.StatusForbidden},
		{"unique", &pgconn.PgError{Code: "23505"}, apperr.KindValidation, "unique_violation", http.StatusBadRequest},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperr.KindValidation, "foreign_key_violation", http.StatusBadRequest},
		{"not null", &pgconn.PgError{Code: "23502"}, apperr.KindValidation, "not_null_violation", http.StatusBadRequest},
		{"check", &pgconn.PgError{Code: "23514"}, apperr.KindValidation, "check_violation", http.StatusBadRequest},
		{"policy", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "42501"}), apperr.KindAuthorization, "policy_violation", http.StatusForbidden},
		{"auth", &pgconn.PgError{Code: "28P01"}, apperr.KindAuthentication, "no_session", http.StatusUnauthorized},
		{"unknown pg", &pgconn.PgError{Code: "53300"}, apperr.KindApp, "db_53300", http.StatusInternalServerError},
		{"unknown", errors.New("boom"), apperr.KindApp, "unexpected", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := apperr.Translate(context.Background(), tt.err, "test.op")

			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.status, got.Status())
			assert.Equal(t, "test.op", got.Origin)
			assert.NotEmpty(t, got.Message)
			assert.ErrorIs(t, got, tt.err, "cause must stay reachable")
		})
	}
}

func TestTranslate_MessageIsNotInternal(t *testing.T) {
	t.Parallel()

	got := apperr.Translate(context.Background(), errors.New("pq: relation tickets does not exist"), "ticket.list")

	assert.Equal(t, "Ocorreu um erro inesperado. Tente novamente.", got.Message)
	assert.NotContains(t, got.Message, "relation")
}

func TestTranslate_PassesThroughTranslated(t *testing.T) {
	t.Parallel()

	first := apperr.New(apperr.KindAuthorization, "custom", "a", nil)
	got := apperr.Translate(context.Background(), fmt.Errorf("outer: %w", first), "b")

	assert.Same(t, first, got)
}
