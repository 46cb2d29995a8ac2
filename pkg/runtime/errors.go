// Package runtime owns the connection pool and the error taxonomy shared by
// the query builder, the stores and the migration executor.
package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinels for errors.Is. A *PersistenceError matches the one for its Kind.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key value")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNoConnection        = errors.New("no database connection")
)

// ConnectionError reports the step at which reaching the server failed.
type ConnectionError struct {
	Stage string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error (%s): %v", e.Stage, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNoConnection) match any connection failure.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrNoConnection
}

// Kind classifies a PersistenceError.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForeignKey
	KindUnique
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForeignKey:
		return "foreign_key"
	case KindUnique:
		return "unique"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// PersistenceError is returned when a single store round trip fails.
type PersistenceError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is maps each kind onto the matching sentinel error.
func (e *PersistenceError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrForeignKeyViolation:
		return e.Kind == KindForeignKey
	case ErrDuplicateKey:
		return e.Kind == KindUnique
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	}
	return false
}

// NewPersistenceError classifies err and wraps it. A nil err yields nil.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &PersistenceError{Op: op, Kind: Classify(err), Err: err}
}

// NotFound builds a KindNotFound error for op.
func NotFound(op string, format string, args ...interface{}) error {
	return &PersistenceError{Op: op, Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// Classify maps a driver error onto a Kind using its SQLSTATE.
func Classify(err error) Kind {
	var perr *PersistenceError
	if errors.As(err, &perr) && perr.Kind != KindUnknown {
		return perr.Kind
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindInvalidInput
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindUnknown
	}
	switch {
	case pgErr.Code == "23503":
		return KindForeignKey
	case pgErr.Code == "23505":
		return KindUnique
	case pgErr.Code == "23502", pgErr.Code == "23514":
		return KindInvalidInput
	case strings.HasPrefix(pgErr.Code, "22"):
		// data exceptions: bad enum label, bad date, numeric overflow
		return KindInvalidInput
	}
	return KindUnknown
}

// ValidationError is a model rejecting one of its own fields before any SQL
// is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// QueryError carries the statement the server refused.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// MigrationError is a schema version that failed to apply or roll back.
type MigrationError struct {
	Version string
	Message string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration error (version %s): %s: %v", e.Version, e.Message, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
