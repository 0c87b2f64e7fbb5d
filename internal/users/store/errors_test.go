package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"usergate/pkg/platform/sentinel"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{name: "no rows", err: sql.ErrNoRows, sentinel: sentinel.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: uniqueViolationCode}, sentinel: sentinel.ErrConflict},
		{name: "bad connection", err: driver.ErrBadConn, sentinel: sentinel.ErrUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, sentinel: sentinel.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("find user", tt.err), tt.sentinel)
		})
	}

	t.Run("other errors are wrapped", func(t *testing.T) {
		boom := errors.New("syntax error")
		err := mapError("find user", boom)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
		assert.Equal(t, "find user: syntax error", err.Error())
	})

	t.Run("unavailable keeps the cause", func(t *testing.T) {
		assert.ErrorIs(t, mapError("find user", driver.ErrBadConn), driver.ErrBadConn)
	})
}
