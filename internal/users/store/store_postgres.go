package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"usergate/internal/users/models"
	id "usergate/pkg/domain"
	"usergate/pkg/platform/sentinel"
	txcontext "usergate/pkg/platform/tx"
)

const uniqueViolationCode = "23505"

const userColumns = `id, name, email, phone, password_hash, is_active, is_staff, created_at, updated_at`

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists users in PostgreSQL through database/sql with the
// pgx driver. Statements join a transaction carried in ctx when present.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) q(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(user.ID), user.Name, user.Email, user.Phone, user.PasswordHash,
		user.IsActive, user.IsStaff, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return mapError("create user", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError("find user by id", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError("find user by email", err)
	}
	return u, nil
}

func (s *PostgresStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, mapError("check email", err)
	}
	return exists, nil
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE users
		    SET name = $2, email = $3, phone = $4, password_hash = $5,
		        is_active = $6, is_staff = $7, updated_at = $8
		  WHERE id = $1`,
		uuid.UUID(user.ID), user.Name, user.Email, user.Phone, user.PasswordHash,
		user.IsActive, user.IsStaff, user.UpdatedAt,
	)
	if err != nil {
		return mapError("update user", err)
	}
	return requireRow(res, "update user")
}

func (s *PostgresStore) Deactivate(ctx context.Context, userID id.UserID, at time.Time) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = $2 WHERE id = $1`,
		uuid.UUID(userID), at)
	if err != nil {
		return mapError("deactivate user", err)
	}
	return requireRow(res, "deactivate user")
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.User, int, error) {
	where := `WHERE is_active`
	if filter.IncludeInactive {
		where = ``
	}

	var total int
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where).Scan(&total); err != nil {
		return nil, 0, mapError("count users", err)
	}

	limit := sql.NullInt64{Int64: int64(filter.Limit), Valid: filter.Limit > 0}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users `+where+`
		  ORDER BY created_at DESC, id
		  LIMIT $1 OFFSET $2`,
		limit, max(filter.Offset, 0))
	if err != nil {
		return nil, 0, mapError("list users", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapError("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list users", err)
	}
	return users, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u   models.User
		uid uuid.UUID
	)
	if err := row.Scan(&uid, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(uid)
	return &u, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// mapError converts driver errors into sentinels; anything else is wrapped.
func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	if unreachable(err) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func unreachable(err error) bool {
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err)
}

// RunInTx runs fn in a database transaction; every store call made with the
// ctx passed to fn joins it.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return txcontext.Run(ctx, s.db, fn)
}
