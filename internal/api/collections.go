package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/tcgpocket/internal/cache"
	"github.com/erazemk/tcgpocket/internal/model"
	"github.com/erazemk/tcgpocket/internal/store"
)

// CollectionsHandler handles collection endpoints.
type CollectionsHandler struct {
	DB        *sql.DB
	Overviews cache.Overviews
}

type createCollectionRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	TotalCardsInSet int    `json:"total_cards_in_set"`
	ReleaseDate     string `json:"release_date"`
	ImageURL        string `json:"image_url"`
}

// List handles GET /api/collections.
func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	collections, err := store.ListCollections(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list collections")
		return
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"collections": collections})
}

// Create handles POST /api/collections.
func (h *CollectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Description == "" {
		jsonError(w, http.StatusBadRequest, "name and description required")
		return
	}

	collection, err := store.CreateCollection(r.Context(), h.DB, model.Collection{
		Name:            req.Name,
		Description:     req.Description,
		TotalCardsInSet: req.TotalCardsInSet,
		ReleaseDate:     req.ReleaseDate,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		storeError(w, err, "failed to create collection")
		return
	}

	slog.Info("collection created", "id", collection.ID, "name", collection.Name)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message":    "Collection created successfully",
		"collection": collection,
	})
}

// Delete handles DELETE /api/collections/{id}.
func (h *CollectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.DeleteCollection(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete collection")
		return
	}
	h.Overviews.Invalidate(r.Context(), id)

	slog.Info("collection deleted", "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Collection deleted successfully"})
}

// Overview handles GET /api/collection-overview/{id}.
func (h *CollectionsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := loadOverview(r, h.DB, h.Overviews, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to get collection overview")
		return
	}
	if overview == nil {
		jsonError(w, http.StatusNotFound, "Collection not found")
		return
	}
	jsonResponse(w, http.StatusOK, overview)
}

// loadOverview returns a collection's overview through the cache. It returns
// nil, nil for unknown collections.
func loadOverview(r *http.Request, db *sql.DB, overviews cache.Overviews, id string) (*model.Overview, error) {
	revision, ok, err := store.CollectionRevision(r.Context(), db, id)
	if err != nil || !ok {
		return nil, err
	}
	if ov, ok := overviews.Get(r.Context(), id, revision); ok {
		return ov, nil
	}

	ov, err := store.GetOverview(r.Context(), db, id)
	if err != nil || ov == nil {
		return nil, err
	}
	overviews.Set(r.Context(), ov)
	return ov, nil
}
