package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}

	require.True(t, IsForeignKeyViolation(fk))
	require.True(t, IsForeignKeyViolation(fmt.Errorf("insert: %w", fk)))
	require.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsForeignKeyViolation(errors.New("boom")))
	require.False(t, IsForeignKeyViolation(nil))
}

func TestIsNoRows(t *testing.T) {
	require.True(t, IsNoRows(pgx.ErrNoRows))
	require.True(t, IsNoRows(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)))
	require.False(t, IsNoRows(nil))
}

func TestParseIDs(t *testing.T) {
	ids, ok := parseIDs("0b0f3f5e-5f0e-4a7c-9a51-1d8f6a2c3b4d", "7d3c2b1a-0000-4000-8000-000000000001")
	require.True(t, ok)
	require.Len(t, ids, 2)

	_, ok = parseIDs("0b0f3f5e-5f0e-4a7c-9a51-1d8f6a2c3b4d", "club-1")
	require.False(t, ok)
}

func TestLimitArg(t *testing.T) {
	require.Nil(t, limitArg(0))
	require.Nil(t, limitArg(-3))

	l := limitArg(50)
	require.NotNil(t, l)
	require.EqualValues(t, 50, *l)
}
