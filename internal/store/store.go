package store

import (
	"context"

	"modhub/internal/models"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User    models.User
	Session models.Session
}

type ListModsInput struct {
	// Status filters on an exact moderation status; empty means no status
	// filter (privileged "all" listing). Visibility rules are applied by the
	// caller before this reaches the store.
	Status   string
	Game     string
	Category string
}

type CreateModInput struct {
	Title        string
	Game         string
	Category     string
	AuthorID     int64
	Description  string
	Version      string
	Requirements string
	ImageEmoji   string
}

type UpdateModStatusInput struct {
	ModID           int64
	Status          string
	RejectionReason string
}

// AuthStore backs the auth service.
type AuthStore interface {
	Register(ctx context.Context, input RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Logout(ctx context.Context, token string) error
	SessionResolver
}

// ModStore backs the mods service.
type ModStore interface {
	ListMods(ctx context.Context, input ListModsInput) ([]models.Mod, error)
	CreateMod(ctx context.Context, input CreateModInput) (models.ModRef, error)
	UpdateModStatus(ctx context.Context, input UpdateModStatusInput) (models.ModRef, error)
	SessionResolver
}

// SessionResolver maps a bearer token to the owning user. A missing, unknown,
// or expired token is ErrSessionNotFound, which callers treat as "anonymous",
// not as a failure.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (models.User, error)
}
