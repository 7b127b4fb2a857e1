package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"modhub/internal/models"
	"modhub/internal/password"
	"modhub/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Options struct {
	SessionTTL time.Duration
}

type Store struct {
	pool       *pgxpool.Pool
	sessionTTL time.Duration
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	ttl := options.SessionTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Store{pool: pool, sessionTTL: ttl}
}

// Register inserts the user and their first session in one transaction so a
// duplicate username/email leaves no rows behind.
func (s *Store) Register(ctx context.Context, input store.RegisterInput) (store.AuthResult, error) {
	hash, err := password.Hash(input.Password)
	if err != nil {
		return store.AuthResult{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.AuthResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var user models.User
	row := tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, role, COALESCE(avatar_url, '')
	`, input.Username, input.Email, hash, models.RoleUser)
	if err = row.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.AvatarURL); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = store.ErrDuplicateUser
		}
		return store.AuthResult{}, err
	}

	session := s.newSession(user.ID)
	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (user_id, session_token, expires_at)
		VALUES ($1, $2, $3)
	`, session.UserID, session.Token, session.ExpiresAt)
	if err != nil {
		return store.AuthResult{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return store.AuthResult{}, err
	}
	return store.AuthResult{User: user, Session: session}, nil
}

// Login does not distinguish an unknown email from a wrong password; both
// are ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, email, plaintext string) (store.AuthResult, error) {
	var user models.User
	var hash string
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, role, COALESCE(avatar_url, ''), password_hash
		FROM users
		WHERE email = $1
	`, email)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.AvatarURL, &hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.AuthResult{}, store.ErrInvalidCredentials
		}
		return store.AuthResult{}, err
	}

	ok, err := password.Verify(hash, plaintext)
	if err != nil || !ok {
		return store.AuthResult{}, store.ErrInvalidCredentials
	}

	session := s.newSession(user.ID)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (user_id, session_token, expires_at)
		VALUES ($1, $2, $3)
	`, session.UserID, session.Token, session.ExpiresAt)
	if err != nil {
		return store.AuthResult{}, err
	}
	return store.AuthResult{User: user, Session: session}, nil
}

// Logout expires the session row rather than deleting it, keeping the
// historical record. A token that matches nothing is a no-op.
func (s *Store) Logout(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions SET expires_at = NOW() WHERE session_token = $1
	`, token)
	return err
}

func (s *Store) ResolveSession(ctx context.Context, token string) (models.User, error) {
	var user models.User
	row := s.pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.email, u.role, COALESCE(u.avatar_url, '')
		FROM users u
		JOIN sessions s ON s.user_id = u.id
		WHERE s.session_token = $1 AND s.expires_at > NOW()
	`, token)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.AvatarURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrSessionNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) newSession(userID int64) models.Session {
	return models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}
}

func (s *Store) ListMods(ctx context.Context, input store.ListModsInput) ([]models.Mod, error) {
	query := `
		SELECT m.id, m.title, m.game, m.category, m.author_id,
		       COALESCE(u.username, ''), m.description, m.version,
		       COALESCE(m.requirements, ''), COALESCE(m.image_emoji, ''),
		       m.status, COALESCE(m.rejection_reason, ''),
		       m.created_at, m.updated_at,
		       COALESCE(AVG(r.rating), 0)::float8,
		       COUNT(DISTINCT r.id)
		FROM mods m
		LEFT JOIN users u ON u.id = m.author_id
		LEFT JOIN reviews r ON r.mod_id = m.id
		WHERE 1=1`

	var args []any
	if input.Status != "" {
		args = append(args, input.Status)
		query += fmt.Sprintf(" AND m.status = $%d", len(args))
	}
	if input.Game != "" {
		args = append(args, input.Game)
		query += fmt.Sprintf(" AND m.game = $%d", len(args))
	}
	if input.Category != "" {
		args = append(args, input.Category)
		query += fmt.Sprintf(" AND m.category = $%d", len(args))
	}
	query += `
		GROUP BY m.id, u.username
		ORDER BY m.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mods := []models.Mod{}
	for rows.Next() {
		var mod models.Mod
		if err := rows.Scan(
			&mod.ID, &mod.Title, &mod.Game, &mod.Category, &mod.AuthorID,
			&mod.AuthorName, &mod.Description, &mod.Version,
			&mod.Requirements, &mod.ImageEmoji,
			&mod.Status, &mod.RejectionReason,
			&mod.CreatedAt, &mod.UpdatedAt,
			&mod.Rating, &mod.ReviewCount,
		); err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mods, nil
}

// CreateMod forces status to pending regardless of caller input.
func (s *Store) CreateMod(ctx context.Context, input store.CreateModInput) (models.ModRef, error) {
	var ref models.ModRef
	row := s.pool.QueryRow(ctx, `
		INSERT INTO mods (title, game, category, author_id, description, version, requirements, image_emoji, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, title, status
	`, input.Title, input.Game, input.Category, input.AuthorID,
		input.Description, input.Version, input.Requirements, input.ImageEmoji,
		models.StatusPending)
	if err := row.Scan(&ref.ID, &ref.Title, &ref.Status); err != nil {
		return models.ModRef{}, err
	}
	return ref, nil
}

func (s *Store) UpdateModStatus(ctx context.Context, input store.UpdateModStatusInput) (models.ModRef, error) {
	var ref models.ModRef
	row := s.pool.QueryRow(ctx, `
		UPDATE mods
		SET status = $1, rejection_reason = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3
		RETURNING id, title, status
	`, input.Status, input.RejectionReason, input.ModID)
	if err := row.Scan(&ref.ID, &ref.Title, &ref.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ModRef{}, store.ErrModNotFound
		}
		return models.ModRef{}, err
	}
	return ref, nil
}
