package httpapi

import (
	"context"

	"modhub/internal/models"
	"modhub/internal/store"
)

// fakeStore satisfies both store.AuthStore and store.ModStore for handler
// tests; unset funcs fall back to harmless defaults.
type fakeStore struct {
	registerFn func(ctx context.Context, input store.RegisterInput) (store.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (store.AuthResult, error)
	logoutFn   func(ctx context.Context, token string) error
	resolveFn  func(ctx context.Context, token string) (models.User, error)
	listFn     func(ctx context.Context, input store.ListModsInput) ([]models.Mod, error)
	createFn   func(ctx context.Context, input store.CreateModInput) (models.ModRef, error)
	updateFn   func(ctx context.Context, input store.UpdateModStatusInput) (models.ModRef, error)
}

func (f *fakeStore) Register(ctx context.Context, input store.RegisterInput) (store.AuthResult, error) {
	if f.registerFn == nil {
		return store.AuthResult{}, nil
	}
	return f.registerFn(ctx, input)
}

func (f *fakeStore) Login(ctx context.Context, email, password string) (store.AuthResult, error) {
	if f.loginFn == nil {
		return store.AuthResult{}, store.ErrInvalidCredentials
	}
	return f.loginFn(ctx, email, password)
}

func (f *fakeStore) Logout(ctx context.Context, token string) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx, token)
}

func (f *fakeStore) ResolveSession(ctx context.Context, token string) (models.User, error) {
	if f.resolveFn == nil {
		return models.User{}, store.ErrSessionNotFound
	}
	return f.resolveFn(ctx, token)
}

func (f *fakeStore) ListMods(ctx context.Context, input store.ListModsInput) ([]models.Mod, error) {
	if f.listFn == nil {
		return []models.Mod{}, nil
	}
	return f.listFn(ctx, input)
}

func (f *fakeStore) CreateMod(ctx context.Context, input store.CreateModInput) (models.ModRef, error) {
	if f.createFn == nil {
		return models.ModRef{}, nil
	}
	return f.createFn(ctx, input)
}

func (f *fakeStore) UpdateModStatus(ctx context.Context, input store.UpdateModStatusInput) (models.ModRef, error) {
	if f.updateFn == nil {
		return models.ModRef{}, store.ErrModNotFound
	}
	return f.updateFn(ctx, input)
}

// resolveAs returns a resolver recognizing exactly one token.
func resolveAs(token string, user models.User) func(ctx context.Context, got string) (models.User, error) {
	return func(ctx context.Context, got string) (models.User, error) {
		if got == token {
			return user, nil
		}
		return models.User{}, store.ErrSessionNotFound
	}
}
