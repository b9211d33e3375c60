// Package pgdb implements the core repositories on postgres via sqlx.
// Rows are mapped to core models by hand; partial updates re-read the row
// inside a transaction and merge in Go so both engines share the exact same
// "only save set fields" semantics.
package pgdb

import (
	"database/sql"

	"github.com/trezcool/classtrack/core"
)

var defaultOrdering = core.DBOrdering{Field: "id", Ascending: true}

// trapNoRows maps psql "no rows" to the entity's not-found error; anything
// else is a backend failure.
func trapNoRows(err, notFound error, op string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return core.NewTransportError(op, err)
}
