package services

import (
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation      ErrorKind = "VALIDATION"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindConflict        ErrorKind = "CONFLICT"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindPaymentMismatch ErrorKind = "PAYMENT_MISMATCH"
	KindUpstream        ErrorKind = "UPSTREAM"
	KindNotification    ErrorKind = "NOTIFICATION"
	KindInternal        ErrorKind = "INTERNAL"
)

// Error is the typed failure every service operation returns for business-rule violations.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func notFound(what string) error {
	return newError(KindNotFound, "%s not found", what)
}

func conflict(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func forbidden(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

func upstream(err error, format string, args ...any) error {
	e := newError(KindUpstream, format, args...)
	e.Err = err
	return e
}

// notFoundOr turns gorm.ErrRecordNotFound into a NOT_FOUND error and wraps anything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func isDuplicateKeyError(err error) bool {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == pgerrcode.UniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyError(err error) bool {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1452 || me.Number == 1451
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == pgerrcode.ForeignKeyViolation
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

// persistError classifies write failures on catalog entities.
func persistError(err error, what string) error {
	var se *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &se):
		return err
	case isDuplicateKeyError(err):
		return conflict("%s already exists", what)
	case isForeignKeyError(err):
		return validationError("%s references a record that does not exist or is still in use", what)
	}
	return fmt.Errorf("failed to save %s: %w", what, err)
}
