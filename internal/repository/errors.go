// Package repository defines the MySQL data access layer and the error
// values shared across repositories.  These sentinel values allow higher
// layers to distinguish failure scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup or scoped delete matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user with the same email is present.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateFavourite is returned when the owner already saved the same
// coordinates.  The unique key rejected the insert; nothing was written.
var ErrDuplicateFavourite = errors.New("favourite already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
