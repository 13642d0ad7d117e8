// Package pgxutil bridges the database/sql pool to native pgx connections so
// repositories can use pgx row mapping while the rest of the app shares one
// *sql.DB.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// WithPgxConn checks a connection out of the pool, unwraps it to the
// underlying *pgx.Conn, and runs fn with it. The connection goes back to the
// pool when fn returns; fn must not retain it.
func WithPgxConn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return conn.Raw(func(driverConn any) error {
		bridged, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return errors.New("driver connection is not a pgx stdlib conn")
		}
		return fn(bridged.Conn())
	})
}
