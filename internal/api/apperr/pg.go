package apperr

import (
	"errors"
	"net/http"
	"strings"

	pgconnv1 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
)

// Map well-known constraint names to fields
var constraintField = map[string]string{
	"common_passwords_value_key":         "value",
	"password_evaluations_band_check":    "band",
	"password_evaluations_outcome_check": "outcome",
	"password_evaluations_score_check":   "score",
}

// pgFields is the subset of a server error both pgconn generations expose.
type pgFields struct {
	Code, Message, Detail, ConstraintName, ColumnName string
}

func asPG(err error) (pgFields, bool) {
	var v5 *pgconn.PgError
	if errors.As(err, &v5) {
		return pgFields{v5.Code, v5.Message, v5.Detail, v5.ConstraintName, v5.ColumnName}, true
	}
	var v1 *pgconnv1.PgError
	if errors.As(err, &v1) {
		return pgFields{v1.Code, v1.Message, v1.Detail, v1.ConstraintName, v1.ColumnName}, true
	}
	return pgFields{}, false
}

// sqlstateRule says how one SQLSTATE surfaces to clients. A rule with a
// fieldCode attaches a field error; one without sets Detail.
type sqlstateRule struct {
	status    int
	fieldCode string
	message   string
	retryable bool
}

var sqlstateRules = map[string]sqlstateRule{
	"23505": {status: http.StatusConflict, fieldCode: "unique", message: "value already exists"},
	"23502": {status: http.StatusBadRequest, fieldCode: "not_null", message: "required field is missing"},
	"23514": {status: http.StatusUnprocessableEntity, fieldCode: "check", message: "constraint failed"},
	"22001": {status: http.StatusBadRequest, fieldCode: "too_long", message: "value is too long"},
	"40001": {status: http.StatusConflict, message: "transaction conflict, please retry", retryable: true},
	"40P01": {status: http.StatusConflict, message: "deadlock detected, please retry", retryable: true},
	"57014": {status: http.StatusServiceUnavailable, message: "database temporarily unavailable", retryable: true},
	"57P01": {status: http.StatusServiceUnavailable, message: "database temporarily unavailable", retryable: true},
	"08006": {status: http.StatusServiceUnavailable, message: "database temporarily unavailable", retryable: true},
	"08003": {status: http.StatusServiceUnavailable, message: "database temporarily unavailable", retryable: true},
}

var knownColumns = []string{"session_id", "score", "band", "outcome", "value"}

// field names the offending column: constraint first, then the error detail,
// then the column the server reported.
func (pg pgFields) field() string {
	if f, ok := constraintField[pg.ConstraintName]; ok {
		return f
	}
	for _, col := range knownColumns {
		if strings.Contains(pg.Detail, col) {
			return col
		}
	}
	return pg.ColumnName
}

// FromPG maps a Postgres error to a Problem. Returns (Problem, true) if mapped.
// Unknown SQLSTATEs become a plain 500.
func FromPG(err error) (Problem, bool) {
	pg, ok := asPG(err)
	if !ok {
		return Problem{}, false
	}
	rule, known := sqlstateRules[pg.Code]
	if !known {
		return Problem{Status: http.StatusInternalServerError, Title: "Database error"}, true
	}

	p := Problem{Status: rule.status, Title: http.StatusText(rule.status), Retryable: rule.retryable}
	if rule.fieldCode == "" {
		p.Detail = rule.message
		return p, true
	}
	field := pg.field()
	if field == "" {
		field = "field"
		if rule.fieldCode == "unique" {
			field = "resource"
		}
	}
	p.FieldErrors = []FieldError{{Field: field, Code: rule.fieldCode, Message: rule.message}}
	return p, true
}

// HandleDBError maps err to a Problem and writes it. Returns true if handled.
func HandleDBError(w http.ResponseWriter, r *http.Request, err error, fallbackTitle string) bool {
	if err == nil {
		return false
	}
	if p, ok := FromPG(err); ok {
		Write(w, r, p)
		return true
	}
	Write(w, r, Problem{Status: http.StatusInternalServerError, Title: fallbackTitle})
	return true
}
