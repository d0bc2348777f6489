package database

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the repositories map to domain errors
const (
	SQLStateUniqueViolation     = "23505"
	SQLStateExclusionViolation  = "23P01"
	SQLStateForeignKeyViolation = "23503"
	SQLStateCheckViolation      = "23514"
)

// PGErrorDetails contains diagnostics extracted from PostgreSQL errors
type PGErrorDetails struct {
	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

// ExtractPGError returns the pq diagnostics of err, or nil if err is not a pq error
func ExtractPGError(err error) *PGErrorDetails {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	return &PGErrorDetails{
		SQLState:   string(pqErr.Code),
		Constraint: pqErr.Constraint,
		Table:      pqErr.Table,
		Column:     pqErr.Column,
		Detail:     pqErr.Detail,
		Message:    pqErr.Message,
	}
}

// IsViolation reports whether err is a pq error with the given SQLSTATE.
// When constraint is non-empty it must match too.
func IsViolation(err error, sqlState, constraint string) bool {
	d := ExtractPGError(err)
	if d == nil || d.SQLState != sqlState {
		return false
	}
	return constraint == "" || d.Constraint == constraint
}
