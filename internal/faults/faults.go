package faults

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a failure into one of the categories the sync layer and the
// HTTP surface care about. Anything that cannot be classified is Transient.
type Kind string

const (
	KindNotAuthenticated Kind = "not_authenticated"
	KindNotAuthorized    Kind = "not_authorized"
	KindConflict         Kind = "conflict"
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation"
	KindTransient        Kind = "transient"
)

// Fault is an error carrying a Kind and a user-facing message.
type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// New creates a Fault with the given kind and message.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// Wrap creates a Fault wrapping an underlying error.
func Wrap(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind of an error. Non-Fault errors classify as Transient;
// a nil error has no kind and returns the empty string.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindTransient
}

// Is reports whether err classifies as the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the user-facing message of an error. Non-Fault errors pass
// their Error() string through, matching the "message passed through" policy
// for unclassified remote failures.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var f *Fault
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}

// PostgreSQL SQLSTATE codes the remote collaborator is required to distinguish.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInsufficientPrivs   = "42501"
)

// FromPostgres classifies a pgx error into the fault taxonomy.
// pgx.ErrNoRows maps to NotFound; SQLSTATE codes map unique violations to
// Conflict, foreign-key violations to Validation and privilege denials
// (including row-level security) to NotAuthorized. Everything else is Transient.
func FromPostgres(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(KindNotFound, message, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Wrap(KindConflict, message, err)
		case pgForeignKeyViolation:
			return Wrap(KindValidation, message, err)
		case pgInsufficientPrivs:
			return Wrap(KindNotAuthorized, message, err)
		}
	}
	return Wrap(KindTransient, message, err)
}
