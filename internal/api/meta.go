package api

import (
	"net/http"

	"github.com/erazemk/tcgpocket/internal/model"
	"github.com/erazemk/tcgpocket/internal/pack"
)

// MetaHandler serves static reference data.
type MetaHandler struct {
	Opener *pack.Opener
}

// Health handles GET /api/health.
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "TCG Pocket API is running",
	})
}

// Rarities handles GET /api/rarities.
func (h *MetaHandler) Rarities(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string][]string{"rarities": model.Rarities})
}

// CardTypes handles GET /api/card-types.
func (h *MetaHandler) CardTypes(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string][]string{"card_types": model.CardTypes})
}

// PackProbabilities handles GET /api/pack-probabilities.
func (h *MetaHandler) PackProbabilities(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"probabilities":  h.Opener.Probabilities(),
		"cards_per_pack": h.Opener.CardsPerPack(),
	})
}
