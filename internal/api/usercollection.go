package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/tcgpocket/internal/cache"
	"github.com/erazemk/tcgpocket/internal/reconcile"
	"github.com/erazemk/tcgpocket/internal/store"
)

// UserCollectionHandler serves what users have pulled.
type UserCollectionHandler struct {
	DB        *sql.DB
	Overviews cache.Overviews
}

func userIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	return id, err == nil
}

// Get handles GET /api/user-collection/{user_id}. Users with nothing pulled,
// including unknown users, get an empty summary.
func (h *UserCollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	uc, err := store.GetUserCollection(r.Context(), h.DB, userID)
	if err != nil {
		storeError(w, err, "failed to get user collection")
		return
	}
	jsonResponse(w, http.StatusOK, uc)
}

// View handles GET /api/user-collection/{user_id}/collections/{collection_id}.
// It reconciles the user's cards against the collection's numbered slots.
// An unknown collection falls back to listing owned cards only.
func (h *UserCollectionHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	collectionID := r.PathValue("collection_id")

	instances, err := store.ListCardInstances(r.Context(), h.DB, userID, collectionID)
	if err != nil {
		storeError(w, err, "failed to list owned cards")
		return
	}

	overview, err := loadOverview(r, h.DB, h.Overviews, collectionID)
	if err != nil {
		storeError(w, err, "failed to get collection overview")
		return
	}

	q := r.URL.Query()
	showMissing := true
	if v := q.Get("show_missing"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "show_missing must be true or false")
			return
		}
		showMissing = b
	}

	view := reconcile.Build(instances, overview, reconcile.Options{
		SortBy:      reconcile.ParseSortMode(q.Get("sort")),
		ShowMissing: showMissing,
	})
	jsonResponse(w, http.StatusOK, view)
}
