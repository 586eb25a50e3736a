package database

import (
	"database/sql"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/gocraft/dbr/v2"
	"github.com/gocraft/dbr/v2/dialect"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// supported drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// errors
var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrEmptyDSN          = errors.New("empty data source name")
)

// Open connects to a database through dbr
// NOTE: dbr has no sqlite dialect registration for the pure-go driver,
// so the connection is assembled by hand for it
func Open(driver, dsn string) (*dbr.Connection, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	dsn = strings.TrimSpace(dsn)

	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	switch driver {
	case DriverMySQL:
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return nil, errors.Wrap(err, "invalid mysql dsn")
		}

		conn, err := dbr.Open(DriverMySQL, dsn, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to mysql")
		}

		return conn, nil
	case DriverSQLite:
		db, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite database")
		}

		// every connection to an in-memory database sees its own database
		if IsMemoryDSN(dsn) {
			db.SetMaxOpenConns(1)
		}

		conn := &dbr.Connection{
			DB:            db,
			Dialect:       dialect.SQLite3,
			EventReceiver: &dbr.NullEventReceiver{},
		}

		return conn, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedDriver, "driver %q", driver)
	}
}

// IsMemoryDSN tells whether a sqlite dsn points to an in-memory database
func IsMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// SQLiteForTesting returns a connection to a fresh in-memory database
func SQLiteForTesting() (*dbr.Connection, error) {
	return Open(DriverSQLite, ":memory:")
}

// IsDuplicate tells whether an error is a unique key violation
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}

	if myErr, ok := errors.Cause(err).(*mysql.MySQLError); ok {
		return myErr.Number == 1062
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
