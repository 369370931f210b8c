package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestAuthRequestRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuthRequestRepo(db, 30*time.Minute)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO auth_requests \(id, email, status, session_token, created_at\)`).
		WithArgs(id, "user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	a, err := r.Create(ctx, id, "user@example.com")
	require.NoError(t, err)
	require.Equal(t, id, a.ID)
	require.Equal(t, model.StatusPending, a.Status)
	require.Empty(t, a.SessionToken)
	require.Equal(t, now, a.CreatedAt)
}

func TestAuthRequestRepo_Get_Fresh(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuthRequestRepo(db, 30*time.Minute)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, email, status, session_token, created_at FROM auth_requests WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "status", "session_token", "created_at"}).
			AddRow(id, "user@example.com", "pending", "", time.Now().Add(-time.Minute)))

	a, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", a.Email)
	require.Equal(t, model.StatusPending, a.Status)
}

func TestAuthRequestRepo_Get_ExpiredLooksUnknown(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuthRequestRepo(db, 30*time.Minute)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	// An expired row is deleted on read and reported as not-found.
	mock.ExpectQuery(`SELECT id, email, status, session_token, created_at FROM auth_requests WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "status", "session_token", "created_at"}).
			AddRow(id, "user@example.com", "pending", "", time.Now().Add(-time.Hour)))
	mock.ExpectExec(`DELETE FROM auth_requests WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	_, err := r.Get(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)

	// Unknown id yields the identical error.
	mock.ExpectQuery(`SELECT id, email, status, session_token, created_at FROM auth_requests WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Get(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAuthRequestRepo_MarkVerified(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuthRequestRepo(db, 30*time.Minute)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE auth_requests SET status='verified', session_token=\$2 WHERE id=\$1`).
		WithArgs(id, "tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.MarkVerified(ctx, id, "tok"))

	mock.ExpectExec(`UPDATE auth_requests SET status='verified', session_token=\$2 WHERE id=\$1`).
		WithArgs(id, "tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.MarkVerified(ctx, id, "tok"), errs.ErrNotFound)
}

func TestAuthRequestRepo_Consume_AtMostOnce(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuthRequestRepo(db, 30*time.Minute)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`DELETE FROM auth_requests WHERE id=\$1 AND status='verified' RETURNING email, session_token`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"email", "session_token"}).
			AddRow("user@example.com", "tok"))

	email, tok, err := r.Consume(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", email)
	require.Equal(t, "tok", tok)

	// The losing reader's DELETE matches no row.
	mock.ExpectQuery(`DELETE FROM auth_requests WHERE id=\$1 AND status='verified' RETURNING email, session_token`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, _, err = r.Consume(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAuthRequestRepo_Delete_Idempotent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuthRequestRepo(db, 30*time.Minute)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM auth_requests WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.NoError(t, r.Delete(ctx, id))
}

func TestAuthRequestRepo_PruneExpired(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuthRequestRepo(db, 30*time.Minute)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM auth_requests WHERE created_at < now\(\) - \$1::interval`).
		WithArgs(30 * time.Minute).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := r.PruneExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}
