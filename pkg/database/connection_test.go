package database_test

import (
	"testing"

	"github.com/agubarev/orgtree/pkg/database"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestOpen(t *testing.T) {
	a := assert.New(t)

	_, err := database.Open("postgres", "whatever")
	a.Equal(database.ErrUnsupportedDriver, errors.Cause(err))

	_, err = database.Open(database.DriverSQLite, " ")
	a.Equal(database.ErrEmptyDSN, err)

	conn, err := database.SQLiteForTesting()
	a.NoError(err)
	a.NotNil(conn)
	defer conn.Close()

	_, err = conn.Exec("CREATE TABLE sample (id INTEGER PRIMARY KEY)")
	a.NoError(err)

	_, err = conn.Exec("INSERT INTO sample (id) VALUES (1)")
	a.NoError(err)

	_, err = conn.Exec("INSERT INTO sample (id) VALUES (1)")
	a.Error(err)
	a.True(database.IsDuplicate(err))
}

func TestIsDuplicate(t *testing.T) {
	a := assert.New(t)

	a.False(database.IsDuplicate(nil))
	a.False(database.IsDuplicate(errors.New("connection refused")))
	a.True(database.IsDuplicate(errors.Wrap(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, "insert")))
	a.False(database.IsDuplicate(&mysql.MySQLError{Number: 1045, Message: "Access denied"}))
}
