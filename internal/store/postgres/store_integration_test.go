package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"modhub/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestRegisterConflictRollsBack(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	first, err := st.Register(ctx, store.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = st.Register(ctx, store.RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "other",
	})
	if !errors.Is(err, store.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}

	_, err = st.Register(ctx, store.RegisterInput{
		Username: "alice",
		Email:    "alice2@example.com",
		Password: "other",
	})
	if !errors.Is(err, store.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser for duplicate username, got %v", err)
	}

	// the failed attempts must leave no user or session rows behind
	var users, sessions int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if users != 1 {
		t.Fatalf("expected 1 user row, got %d", users)
	}
	if sessions != 1 {
		t.Fatalf("expected 1 session row, got %d", sessions)
	}

	// the surviving account is untouched
	resolved, err := st.ResolveSession(ctx, first.Session.Token)
	if err != nil {
		t.Fatalf("resolve session: %v", err)
	}
	if resolved.ID != first.User.ID || resolved.Username != "alice" {
		t.Fatalf("unexpected surviving user: %+v", resolved)
	}
}

func TestLoginMatchesEmailExactly(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	upper, err := st.Register(ctx, store.RegisterInput{
		Username: "bigbob",
		Email:    "Bob@example.com",
		Password: "upper-secret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	lower, err := st.Register(ctx, store.RegisterInput{
		Username: "smallbob",
		Email:    "bob@example.com",
		Password: "lower-secret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// each spelling logs into its own account with its own password
	got, err := st.Login(ctx, "Bob@example.com", "upper-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.User.ID != upper.User.ID {
		t.Fatalf("expected user %d, got %d", upper.User.ID, got.User.ID)
	}

	got, err = st.Login(ctx, "bob@example.com", "lower-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.User.ID != lower.User.ID {
		t.Fatalf("expected user %d, got %d", lower.User.ID, got.User.ID)
	}

	if _, err := st.Login(ctx, "Bob@example.com", "lower-secret"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// a fresh token per successful login
	again, err := st.Login(ctx, "Bob@example.com", "upper-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if again.Session.Token == got.Session.Token || again.Session.Token == upper.Session.Token {
		t.Fatal("expected a fresh session token per login")
	}
}

func TestLogoutExpiresSession(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	result, err := st.Register(ctx, store.RegisterInput{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := st.ResolveSession(ctx, result.Session.Token); err != nil {
		t.Fatalf("resolve before logout: %v", err)
	}

	if err := st.Logout(ctx, result.Session.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := st.ResolveSession(ctx, result.Session.Token); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}

	// repeating logout on an expired token is a harmless no-op
	if err := st.Logout(ctx, result.Session.Token); err != nil {
		t.Fatalf("repeated logout: %v", err)
	}
	if err := st.Logout(ctx, uuid.NewString()); err != nil {
		t.Fatalf("logout unknown token: %v", err)
	}
}

// the schema is owned by the platform, not this code; the test provisions a
// private copy of the tables it consumes
const testSchemaDDL = `
CREATE TABLE users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	avatar_url TEXT
);
CREATE TABLE sessions (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	session_token TEXT NOT NULL UNIQUE,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE mods (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	game TEXT NOT NULL,
	category TEXT NOT NULL,
	author_id BIGINT REFERENCES users(id),
	description TEXT NOT NULL,
	version TEXT NOT NULL,
	requirements TEXT,
	image_emoji TEXT,
	status TEXT NOT NULL,
	rejection_reason TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE reviews (
	id BIGSERIAL PRIMARY KEY,
	mod_id BIGINT NOT NULL REFERENCES mods(id),
	rating INT NOT NULL
);
`

func setupTestStore(t *testing.T, ctx context.Context) (*Store, *pgxpool.Pool, func()) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL is required for integration tests")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := createSchema(ctx, dsn, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	pool, err := newPoolWithSchema(ctx, dsn, schema)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}

	if _, err := pool.Exec(ctx, testSchemaDDL); err != nil {
		pool.Close()
		t.Fatalf("create tables: %v", err)
	}

	store := NewStore(pool, Options{})
	cleanup := func() {
		pool.Close()
		_ = dropSchema(context.Background(), dsn, schema)
	}
	return store, pool, cleanup
}

func createSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+schema)
	return err
}

func dropSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "DROP SCHEMA "+schema+" CASCADE")
	return err
}

func newPoolWithSchema(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	return pgxpool.NewWithConfig(ctx, cfg)
}
