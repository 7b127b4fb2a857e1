package httpapi

import (
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"strings"

	"modhub/internal/authz"
	"modhub/internal/models"
	"modhub/internal/store"
)

const defaultImageEmoji = "📦"

// ModsHandler serves the mod catalog: public listing, authenticated
// submission, and moderator status updates, dispatched by HTTP method.
type ModsHandler struct {
	store store.ModStore
}

type createModRequest struct {
	Title        string `json:"title"`
	Game         string `json:"game"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Version      string `json:"version"`
	Requirements string `json:"requirements"`
	ImageEmoji   string `json:"image_emoji"`
}

type updateStatusRequest struct {
	ModID           int64  `json:"mod_id"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

type listModsResponse struct {
	Success bool         `json:"success"`
	Mods    []models.Mod `json:"mods"`
}

type modResponse struct {
	Success bool          `json:"success"`
	Mod     models.ModRef `json:"mod"`
}

func NewModsHandler(store store.ModStore) *ModsHandler {
	return &ModsHandler{store: store}
}

func (h *ModsHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/metrics", expvar.Handler())
	mux.HandleFunc("/api/mods", h.handleMods)
	return mux
}

func (h *ModsHandler) handleMods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodPut:
		h.handleUpdateStatus(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleList applies the visibility rule before the store sees the filter:
// non-privileged callers are pinned to approved mods no matter what they
// requested, privileged callers get their requested status or, with "all",
// no status filter at all.
func (h *ModsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())

	statusFilter := strings.TrimSpace(r.URL.Query().Get("status"))
	if statusFilter == "" {
		statusFilter = models.StatusApproved
	}
	if authz.Authorize(id.User, authz.CapModerate) != authz.Granted {
		statusFilter = models.StatusApproved
	}
	if statusFilter == models.StatusAll {
		statusFilter = ""
	}

	mods, err := h.store.ListMods(r.Context(), store.ListModsInput{
		Status:   statusFilter,
		Game:     strings.TrimSpace(r.URL.Query().Get("game")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, listModsResponse{Success: true, Mods: mods})
}

func (h *ModsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	if authz.Authorize(id.User, authz.CapSubmitMod) != authz.Granted {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createModRequest
	if r.Body != nil {
		// extra fields such as a caller-supplied status are ignored
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Game = strings.TrimSpace(req.Game)
	req.Category = strings.TrimSpace(req.Category)
	req.Description = strings.TrimSpace(req.Description)
	req.Version = strings.TrimSpace(req.Version)
	if req.Title == "" || req.Game == "" || req.Category == "" || req.Description == "" || req.Version == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.ImageEmoji == "" {
		req.ImageEmoji = defaultImageEmoji
	}

	mod, err := h.store.CreateMod(r.Context(), store.CreateModInput{
		Title:        req.Title,
		Game:         req.Game,
		Category:     req.Category,
		AuthorID:     id.User.ID,
		Description:  req.Description,
		Version:      req.Version,
		Requirements: req.Requirements,
		ImageEmoji:   req.ImageEmoji,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, modResponse{Success: true, Mod: mod})
}

func (h *ModsHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	switch authz.Authorize(id.User, authz.CapModerate) {
	case authz.Granted:
	case authz.DeniedUnauthenticated:
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	default:
		writeError(w, http.StatusForbidden, "Forbidden: moderator access required")
		return
	}

	var req updateStatusRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	req.Status = strings.TrimSpace(req.Status)
	if req.ModID == 0 || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Missing mod_id or status")
		return
	}
	if !models.KnownStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	mod, err := h.store.UpdateModStatus(r.Context(), store.UpdateModStatusInput{
		ModID:           req.ModID,
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		if errors.Is(err, store.ErrModNotFound) {
			writeError(w, http.StatusNotFound, "Mod not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, modResponse{Success: true, Mod: mod})
}
