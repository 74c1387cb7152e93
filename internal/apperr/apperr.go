// Package apperr maps failures from every layer onto the application's
// error taxonomy: a kind, a machine-readable code and a user-facing message
// kept separate from the internal cause.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindApp            Kind = "app"
)

// User-facing messages, one per kind.
var messages = map[Kind]string{
	KindValidation:     "Os dados informados são inválidos.",
	KindAuthentication: "Sua sessão expirou. Entre novamente.",
	KindAuthorization:  "Você não tem permissão para realizar esta ação.",
	KindNotFound:       "O registro solicitado não foi encontrado.",
	KindApp:            "Ocorreu um erro inesperado. Tente novamente.",
}

// PostgreSQL SQLSTATE codes the translation understands.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
	pgInsufficientPriv    = "42501"
	pgInvalidAuthSpec     = "28000"
	pgInvalidPassword     = "28P01"
)

// Error is a translated failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string // shown to the user
	Origin  string // operation that produced the failure
	Err     error  // internal cause
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s (%s)", e.Origin, e.Kind, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s): %v", e.Origin, e.Kind, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind onto an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// New builds an Error of the given kind with the kind's default message.
func New(kind Kind, code, origin string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: messages[kind], Origin: origin, Err: cause}
}

// Translate classifies err, attaches the user-facing message and logs the
// origin. A nil err yields nil. Already translated errors pass through.
func Translate(ctx context.Context, err error, origin string) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	out := classify(err, origin)

	ev := log.Warn()
	if out.Kind == KindApp {
		ev = log.Error()
	}
	if rid := chimw.GetReqID(ctx); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	ev.Err(err).
		Str("origin", origin).
		Str("kind", string(out.Kind)).
		Str("code", out.Code).
		Msg("apperr: operation failed")

	return out
}

func classify(err error, origin string) *Error {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		e := New(KindValidation, fe.Code, origin, err)
		e.Message = messages[KindValidation] + " (" + fe.Field + ")"
		return e
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPg(pgErr, origin, err)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return New(KindNotFound, "not_found", origin, err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return New(KindValidation, "invalid_transition", origin, err)
	case errors.Is(err, domain.ErrInUse):
		return New(KindValidation, "in_use", origin, err)
	case errors.Is(err, domain.ErrConflict):
		return New(KindValidation, "conflict", origin, err)
	case errors.Is(err, domain.ErrValidation):
		return New(KindValidation, "invalid", origin, err)
	case errors.Is(err, domain.ErrUnauthorized):
		return New(KindAuthentication, "no_session", origin, err)
	case errors.Is(err, domain.ErrForbidden):
		return New(KindAuthorization, "forbidden", origin, err)
	default:
		return New(KindApp, "unexpected", origin, err)
	}
}

func classifyPg(pgErr *pgconn.PgError, origin string, err error) *Error {
	switch pgErr.Code {
	case pgUniqueViolation:
		return New(KindValidation, "unique_violation", origin, err)
	case pgForeignKeyViolation:
		return New(KindValidation, "foreign_key_violation", origin, err)
	case pgNotNullViolation:
		return New(KindValidation, "not_null_violation", origin, err)
	case pgCheckViolation:
		return New(KindValidation, "check_violation", origin, err)
	case pgInvalidText:
		return New(KindValidation, "invalid_format", origin, err)
	case pgInsufficientPriv:
		return New(KindAuthorization, "policy_violation", origin, err)
	case pgInvalidAuthSpec, pgInvalidPassword:
		return New(KindAuthentication, "no_session", origin, err)
	default:
		return New(KindApp, "db_"+pgErr.Code, origin, err)
	}
}
