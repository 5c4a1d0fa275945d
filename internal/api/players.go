package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/tcgpocket/internal/model"
	"github.com/erazemk/tcgpocket/internal/store"
)

// PlayersHandler handles player registration and sign-in. Players have no
// password; their display name identifies them.
type PlayersHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type playerRequest struct {
	Name string `json:"name"`
}

// Register handles POST /api/players.
func (h *PlayersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, err := model.NormalizeDisplayName(req.Name)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, name, "", model.RolePlayer)
	if err != nil {
		storeError(w, err, "failed to register player")
		return
	}

	slog.Info("player registered", "player", user.Username, "id", user.ID)
	issueToken(w, h.JWTSecret, user, http.StatusCreated)
}

// Login handles POST /api/players/login.
func (h *PlayersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, err := model.NormalizeDisplayName(req.Name)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, name)
	if err != nil {
		storeError(w, err, "internal error")
		return
	}
	if user == nil || user.DeletedAt != nil || user.Role != model.RolePlayer {
		jsonError(w, http.StatusNotFound, "player not found")
		return
	}

	issueToken(w, h.JWTSecret, user, http.StatusOK)
}

// List handles GET /api/players.
func (h *PlayersHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := store.ListUsers(r.Context(), h.DB, model.RolePlayer)
	if err != nil {
		storeError(w, err, "failed to list players")
		return
	}
	if players == nil {
		players = []model.User{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"players": players})
}
