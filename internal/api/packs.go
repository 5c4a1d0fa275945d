package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/tcgpocket/internal/model"
	"github.com/erazemk/tcgpocket/internal/pack"
	"github.com/erazemk/tcgpocket/internal/store"
)

// PacksHandler opens booster packs.
type PacksHandler struct {
	DB     *sql.DB
	Opener *pack.Opener
}

type openPackRequest struct {
	CollectionID string `json:"collection_id"`
}

type openPackResponse struct {
	Message        string       `json:"message"`
	PackID         int64        `json:"pack_id"`
	CollectionName string       `json:"collection_name"`
	Cards          []model.Card `json:"cards"`
}

// Open handles POST /api/open-pack. The pack goes to the caller.
func (h *PacksHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req openPackRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CollectionID == "" {
		jsonError(w, http.StatusBadRequest, "collection_id required")
		return
	}

	collection, err := store.GetCollection(r.Context(), h.DB, req.CollectionID)
	if err != nil {
		storeError(w, err, "failed to open pack")
		return
	}
	if collection == nil {
		jsonError(w, http.StatusNotFound, "Collection not found")
		return
	}

	pool, err := store.ListCardsByCollection(r.Context(), h.DB, collection.ID)
	if err != nil {
		storeError(w, err, "failed to open pack")
		return
	}

	pulled, err := h.Opener.Draw(pool)
	if errors.Is(err, pack.ErrNoCards) {
		jsonError(w, http.StatusBadRequest, "No cards available in this collection")
		return
	}
	if err != nil {
		storeError(w, err, "failed to open pack")
		return
	}

	opening, err := store.RecordPackOpening(r.Context(), h.DB, claims.UserID, *collection, pulled)
	if err != nil {
		storeError(w, err, "failed to open pack")
		return
	}

	slog.Info("pack opened", "user", claims.Username, "collection_id", collection.ID, "pack_id", opening.ID)
	jsonResponse(w, http.StatusOK, openPackResponse{
		Message:        "Pack opened successfully!",
		PackID:         opening.ID,
		CollectionName: opening.CollectionName,
		Cards:          opening.Cards,
	})
}
