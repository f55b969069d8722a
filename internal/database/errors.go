package database

import (
	"errors"

	"ledger-service/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// MySQL server error numbers that indicate lost races rather than bugs
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrCheckViolated   = 3819
)

// classify converts driver contention errors into domain.ErrConflict.
// Domain errors and anything unrecognised pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return domain.NewConflict("database is busy, retry the request")
		case sqlite3.ErrConstraint:
			switch sqliteErr.ExtendedCode {
			case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintCheck:
				return domain.NewConflict(sqliteErr.Error())
			}
		}
		return err
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return domain.NewConflict("transaction aborted by lock contention, retry the request")
		case mysqlErrDuplicateEntry, mysqlErrCheckViolated:
			return domain.NewConflict(mysqlErr.Message)
		}
	}

	return err
}
