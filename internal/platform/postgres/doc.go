// Package postgres provides PostgreSQL implementations of the store
// interfaces, built on database/sql with the pgx driver. Every store accepts
// a DBTX, so the same implementation runs against the connection pool or
// inside a transaction via WithTx.
package postgres
