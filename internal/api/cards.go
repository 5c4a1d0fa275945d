package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/tcgpocket/internal/cache"
	"github.com/erazemk/tcgpocket/internal/imaging"
	"github.com/erazemk/tcgpocket/internal/model"
	"github.com/erazemk/tcgpocket/internal/store"
)

// CardsHandler handles card definition endpoints.
type CardsHandler struct {
	DB        *sql.DB
	Overviews cache.Overviews
}

type createCardRequest struct {
	CollectionID string `json:"collection_id"`
	CardNumber   int    `json:"card_number"`
	Name         string `json:"name"`
	Rarity       string `json:"rarity"`
	CardType     string `json:"card_type"`
	HP           *int   `json:"hp"`
	Attack1      string `json:"attack_1"`
	Attack2      string `json:"attack_2"`
	Weakness     string `json:"weakness"`
	Resistance   string `json:"resistance"`
	Description  string `json:"description"`
	SetName      string `json:"set_name"`
	ImageURL     string `json:"image_url"`
}

func (req createCardRequest) card() model.Card {
	return model.Card{
		CollectionID: req.CollectionID,
		CardNumber:   req.CardNumber,
		Name:         req.Name,
		Rarity:       req.Rarity,
		CardType:     req.CardType,
		HP:           req.HP,
		Attack1:      req.Attack1,
		Attack2:      req.Attack2,
		Weakness:     req.Weakness,
		Resistance:   req.Resistance,
		Description:  req.Description,
		SetName:      req.SetName,
		ImageURL:     req.ImageURL,
	}
}

// List handles GET /api/cards.
func (h *CardsHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := store.ListCards(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list cards")
		return
	}
	if cards == nil {
		cards = []model.Card{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"cards": cards})
}

// ListByCollection handles GET /api/cards/collection/{id}.
func (h *CardsHandler) ListByCollection(w http.ResponseWriter, r *http.Request) {
	cards, err := store.ListCardsByCollection(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to list cards")
		return
	}
	if cards == nil {
		cards = []model.Card{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"cards": cards})
}

// Create handles POST /api/cards with a multipart form carrying the card
// fields and an "image" file.
func (h *CardsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	req := createCardRequest{
		CollectionID: r.FormValue("collection_id"),
		Name:         r.FormValue("name"),
		Rarity:       r.FormValue("rarity"),
		CardType:     r.FormValue("card_type"),
		Attack1:      r.FormValue("attack_1"),
		Attack2:      r.FormValue("attack_2"),
		Weakness:     r.FormValue("weakness"),
		Resistance:   r.FormValue("resistance"),
		Description:  r.FormValue("description"),
		SetName:      r.FormValue("set_name"),
	}

	number, err := strconv.Atoi(strings.TrimSpace(r.FormValue("card_number")))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "card_number must be an integer")
		return
	}
	req.CardNumber = number

	if v := strings.TrimSpace(r.FormValue("hp")); v != "" {
		hp, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "hp must be an integer")
			return
		}
		req.HP = &hp
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	art, err := imaging.Process(file)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, imaging.ErrUnsupported):
			jsonError(w, http.StatusBadRequest, err.Error())
		default:
			jsonError(w, http.StatusBadRequest, "invalid image")
		}
		return
	}

	h.create(w, r, req.card(), &store.CardImage{Data: art.Data, MIME: art.MIME})
}

// CreateFromURL handles POST /api/cards-from-url.
func (h *CardsHandler) CreateFromURL(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.ImageURL) == "" {
		jsonError(w, http.StatusBadRequest, "image_url required")
		return
	}

	h.create(w, r, req.card(), nil)
}

func (h *CardsHandler) create(w http.ResponseWriter, r *http.Request, card model.Card, image *store.CardImage) {
	created, err := store.CreateCard(r.Context(), h.DB, card, image)
	if err != nil {
		storeError(w, err, "failed to create card")
		return
	}
	h.Overviews.Invalidate(r.Context(), created.CollectionID)

	slog.Info("card created", "id", created.ID, "collection_id", created.CollectionID, "number", created.CardNumber)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "Card created successfully",
		"card":    created,
	})
}

// Delete handles DELETE /api/cards/{id}.
func (h *CardsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	collectionID, err := store.DeleteCard(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to delete card")
		return
	}
	h.Overviews.Invalidate(r.Context(), collectionID)

	slog.Info("card deleted", "id", id, "collection_id", collectionID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Card deleted successfully"})
}

// GetImage handles GET /api/card-images/{id}.
func (h *CardsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetCardImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
