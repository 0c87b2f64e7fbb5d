//go:build integration

package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"usergate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	contractSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.Require().NoError(Migrate(context.Background(), s.postgres.DB, logger))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.ctx = context.Background()
	// Postgres keeps microseconds; truncate so round trips compare equal.
	s.base = time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "users"))
	s.store = NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) TestMigrationsApplied() {
	status, err := MigrationStatus(s.ctx, s.postgres.DB)
	s.Require().NoError(err)
	s.Require().NotEmpty(status)
	for version, applied := range status {
		s.True(applied, "migration %d not applied", version)
	}
}

func (s *PostgresStoreSuite) TestRunInTxRollsBack() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(s.store.Create(ctx, s.newUser("rollback@example.com", 0)))
		return context.Canceled
	})
	s.ErrorIs(err, context.Canceled)

	exists, err := s.store.EmailExists(s.ctx, "rollback@example.com")
	s.Require().NoError(err)
	s.False(exists)
}
