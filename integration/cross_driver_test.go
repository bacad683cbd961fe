//go:build integration

// Package integration cross-validates this module's batch execution
// against database/sql + go-sql-driver/mysql on a live server, grounded
// on the teacher's test_client/main.go. It is opt-in via the integration
// build tag and skipped unless both MYSQLBATCH_DSN and MYSQLBATCH_ADDR are
// set, since it is the only part of this repo that talks to a real
// database.
package integration

import (
	"context"
	"database/sql"
	"net"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/fedesasso/mysqlbatch/batch"
	"github.com/fedesasso/mysqlbatch/session"
)

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv("MYSQLBATCH_DSN")
	if v == "" {
		t.Skip("MYSQLBATCH_DSN not set; skipping cross-driver integration test")
	}
	return v
}

func dialAddr(t *testing.T) string {
	t.Helper()
	v := os.Getenv("MYSQLBATCH_ADDR")
	if v == "" {
		t.Skip("MYSQLBATCH_ADDR not set; skipping cross-driver integration test")
	}
	return v
}

// TestCrossDriverSingleStatement runs the same SELECT through
// database/sql (as a reference oracle) and through this module's batch
// executor against a raw net.Conn, and asserts they agree on the
// scalar result.
func TestCrossDriverSingleStatement(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("mysql", dsn(t))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.PingContext(ctx))

	var want int64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT 1").Scan(&want))

	conn, err := net.Dial("tcp", dialAddr(t))
	require.NoError(t, err)
	defer conn.Close()

	refSession := session.NewReferenceSession(conn, false, nil)
	batchConn := batch.NewConnection(refSession)

	b := batch.NewBatch([]*batch.BatchCommand{{Text: "SELECT 1"}})
	b.Connection = batchConn

	got, hasValue, err := b.ExecuteScalar(ctx, batch.IOSynchronous)
	require.NoError(t, err)
	require.True(t, hasValue)

	gotStr, ok := got.(string)
	require.True(t, ok, "scalar value should decode as the text-protocol string %T", got)
	require.Equal(t, "1", gotStr)
	require.Equal(t, int64(1), want)
}
