package httpapi

import (
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"strings"

	"modhub/internal/models"
	"modhub/internal/store"
)

// AuthHandler serves registration, login, logout, and session verification.
// Everything is a POST to /api/auth dispatched by the "action" body field.
type AuthHandler struct {
	store store.AuthStore
}

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Success      bool        `json:"success"`
	User         models.User `json:"user"`
	SessionToken string      `json:"session_token"`
}

type userResponse struct {
	Success bool        `json:"success"`
	User    models.User `json:"user"`
}

type okResponse struct {
	Success bool `json:"success"`
}

func NewAuthHandler(store store.AuthStore) *AuthHandler {
	return &AuthHandler{store: store}
}

func (h *AuthHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/metrics", expvar.Handler())
	mux.HandleFunc("/api/auth", h.handleAuth)
	return mux
}

func (h *AuthHandler) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req authRequest
	if r.Body != nil {
		// unknown fields are tolerated; clients send extra payload keys
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	switch req.Action {
	case "register":
		h.handleRegister(w, r, req)
	case "login":
		h.handleLogin(w, r, req)
	case "logout":
		h.handleLogout(w, r)
	case "verify":
		h.handleVerify(w, r)
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request, req authRequest) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	result, err := h.store.Register(r.Context(), store.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			writeError(w, http.StatusConflict, "Username or email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Success:      true,
		User:         result.User,
		SessionToken: result.Session.Token,
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request, req authRequest) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing email or password")
		return
	}

	result, err := h.store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Success:      true,
		User:         result.User,
		SessionToken: result.Session.Token,
	})
}

// handleLogout expires the session matching the supplied token. Repeating
// logout, or logging out a token that matches nothing, still succeeds.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	if id.Token == "" {
		writeError(w, http.StatusUnauthorized, "No session token")
		return
	}

	if err := h.store.Logout(r.Context(), id.Token); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

func (h *AuthHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	if id.Token == "" {
		writeError(w, http.StatusUnauthorized, "No session token")
		return
	}
	if id.User == nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired session")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: *id.User})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}
