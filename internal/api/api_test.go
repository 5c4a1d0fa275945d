package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/tcgpocket/internal/db"
	"github.com/erazemk/tcgpocket/internal/model"
	"github.com/erazemk/tcgpocket/internal/pack"
	"github.com/erazemk/tcgpocket/internal/reconcile"
	"github.com/erazemk/tcgpocket/internal/store"
)

const testJWTSecret = "test-secret"

type testServer struct {
	*httptest.Server
	DB         *sql.DB
	AdminToken string
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	if opts.Opener == nil {
		opener, err := pack.NewOpener(pack.DefaultConfig(), rand.NewPCG(7, 7))
		if err != nil {
			t.Fatalf("NewOpener: %v", err)
		}
		opts.Opener = opener
	}
	router := NewRouter(database, testJWTSecret, opts)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)

	ts := &testServer{Server: server, DB: database}

	var login loginResponse
	resp := ts.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin", "password": "password"}, &login)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}
	if login.Token == "" {
		t.Fatal("empty token from login")
	}
	ts.AdminToken = login.Token
	return ts
}

// do sends a JSON request and decodes the response body into out if non-nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return resp
}

func (ts *testServer) registerPlayer(t *testing.T, name string) (string, int64) {
	t.Helper()
	var login loginResponse
	resp := ts.do(t, "POST", "/api/players", "", map[string]string{"name": name}, &login)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", name, resp.StatusCode)
	}
	return login.Token, login.User.ID
}

func (ts *testServer) createCollection(t *testing.T, name string, total int) model.Collection {
	t.Helper()
	var out struct {
		Collection model.Collection `json:"collection"`
	}
	resp := ts.do(t, "POST", "/api/collections", ts.AdminToken, map[string]any{
		"name":               name,
		"description":        name + " set",
		"total_cards_in_set": total,
	}, &out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create collection: expected 201, got %d", resp.StatusCode)
	}
	return out.Collection
}

func (ts *testServer) createCard(t *testing.T, collectionID string, number int, name, rarity, cardType string) model.Card {
	t.Helper()
	var out struct {
		Card model.Card `json:"card"`
	}
	resp := ts.do(t, "POST", "/api/cards-from-url", ts.AdminToken, map[string]any{
		"collection_id": collectionID,
		"card_number":   number,
		"name":          name,
		"rarity":        rarity,
		"card_type":     cardType,
		"image_url":     "https://img.example/" + name + ".png",
	}, &out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create card %s: expected 201, got %d", name, resp.StatusCode)
	}
	return out.Card
}

func TestLoginEndpoint(t *testing.T) {
	ts := setupTestServer(t, Options{})

	// Test invalid credentials.
	resp := ts.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}

	// Players have no password and cannot use the admin login.
	ts.registerPlayer(t, "Ash")
	resp = ts.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "Ash", "password": "anything"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for player on admin login, got %d", resp.StatusCode)
	}
}

func TestReferenceEndpoints(t *testing.T) {
	ts := setupTestServer(t, Options{})

	var health map[string]string
	if resp := ts.do(t, "GET", "/api/health", "", nil, &health); resp.StatusCode != http.StatusOK || health["status"] != "healthy" {
		t.Errorf("unexpected health: %d %v", resp.StatusCode, health)
	}

	var rarities map[string][]string
	ts.do(t, "GET", "/api/rarities", "", nil, &rarities)
	if len(rarities["rarities"]) != 6 || rarities["rarities"][5] != model.RaritySecretRare {
		t.Errorf("unexpected rarities: %v", rarities)
	}

	var types map[string][]string
	ts.do(t, "GET", "/api/card-types", "", nil, &types)
	if len(types["card_types"]) != 3 {
		t.Errorf("unexpected card types: %v", types)
	}

	var probs struct {
		Probabilities map[string]float64 `json:"probabilities"`
		CardsPerPack  int                `json:"cards_per_pack"`
	}
	ts.do(t, "GET", "/api/pack-probabilities", "", nil, &probs)
	if probs.CardsPerPack != 6 || probs.Probabilities[model.RarityCommon] != 0.65 {
		t.Errorf("unexpected probabilities: %+v", probs)
	}
}

func TestCollectionsAndCardsFlow(t *testing.T) {
	ts := setupTestServer(t, Options{})
	c := ts.createCollection(t, "Base", 3)
	card := ts.createCard(t, c.ID, 2, "Pikachu", model.RarityCommon, model.CardTypePokemon)

	// Duplicate number.
	var errBody map[string]string
	resp := ts.do(t, "POST", "/api/cards-from-url", ts.AdminToken, map[string]any{
		"collection_id": c.ID, "card_number": 2, "name": "Raichu",
		"rarity": model.RarityRare, "card_type": model.CardTypePokemon, "image_url": "x",
	}, &errBody)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate number, got %d", resp.StatusCode)
	}
	if errBody["error"] != "Card number 2 already exists in this collection" {
		t.Errorf("unexpected error message: %q", errBody["error"])
	}

	// Out of range.
	resp = ts.do(t, "POST", "/api/cards-from-url", ts.AdminToken, map[string]any{
		"collection_id": c.ID, "card_number": 4, "name": "Raichu",
		"rarity": model.RarityRare, "card_type": model.CardTypePokemon, "image_url": "x",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for card number past set size, got %d", resp.StatusCode)
	}

	// List with actual card count.
	var list struct {
		Collections []model.Collection `json:"collections"`
	}
	ts.do(t, "GET", "/api/collections", ts.AdminToken, nil, &list)
	if len(list.Collections) != 1 || list.Collections[0].ActualCards != 1 {
		t.Errorf("unexpected collections: %+v", list.Collections)
	}

	// Overview.
	var ov model.Overview
	resp = ts.do(t, "GET", "/api/collection-overview/"+c.ID, ts.AdminToken, nil, &ov)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("overview: expected 200, got %d", resp.StatusCode)
	}
	if len(ov.CompleteSet) != 3 || ov.ActualCardsCreated != 1 || !ov.CompleteSet[1].Exists {
		t.Errorf("unexpected overview: %+v", ov)
	}
	if resp := ts.do(t, "GET", "/api/collection-overview/nope", ts.AdminToken, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown overview, got %d", resp.StatusCode)
	}

	// Cannot delete a collection with cards.
	resp = ts.do(t, "DELETE", "/api/collections/"+c.ID, ts.AdminToken, nil, &errBody)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if errBody["error"] != "Cannot delete collection with 1 cards. Delete cards first." {
		t.Errorf("unexpected error message: %q", errBody["error"])
	}

	if resp := ts.do(t, "DELETE", "/api/cards/"+card.ID, ts.AdminToken, nil, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("delete card: expected 200, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "DELETE", "/api/cards/"+card.ID, ts.AdminToken, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete card again: expected 404, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "DELETE", "/api/collections/"+c.ID, ts.AdminToken, nil, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("delete collection: expected 200, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "DELETE", "/api/collections/"+c.ID, ts.AdminToken, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete collection again: expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateCardMultipart(t *testing.T) {
	ts := setupTestServer(t, Options{})
	c := ts.createCollection(t, "Base", 10)

	img := image.NewRGBA(image.Rect(0, 0, 63, 88))
	for x := 0; x < 63; x++ {
		for y := 0; y < 88; y++ {
			img.Set(x, y, color.RGBA{200, 180, 0, 255})
		}
	}
	var pngData bytes.Buffer
	png.Encode(&pngData, img)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"collection_id": c.ID,
		"card_number":   "5",
		"name":          "Electabuzz",
		"rarity":        model.RarityRare,
		"card_type":     model.CardTypePokemon,
		"hp":            "70",
		"attack_1":      "Thundershock",
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, _ := mw.CreateFormFile("image", "electabuzz.png")
	fw.Write(pngData.Bytes())
	mw.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/api/cards", &body)
	req.Header.Set("Authorization", "Bearer "+ts.AdminToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	var out struct {
		Card model.Card `json:"card"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if out.Card.HP == nil || *out.Card.HP != 70 {
		t.Errorf("expected hp 70, got %v", out.Card.HP)
	}
	if out.Card.ImageURL != "/api/card-images/"+out.Card.ID {
		t.Errorf("unexpected image url %q", out.Card.ImageURL)
	}

	// Card images are public.
	imgResp, err := http.Get(ts.URL + out.Card.ImageURL)
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	defer imgResp.Body.Close()
	if imgResp.StatusCode != http.StatusOK || imgResp.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("expected JPEG image, got %d %s", imgResp.StatusCode, imgResp.Header.Get("Content-Type"))
	}
}

func TestCardImageAndCollectionRoutes(t *testing.T) {
	ts := setupTestServer(t, Options{})
	c := ts.createCollection(t, "Base", 10)
	card := ts.createCard(t, c.ID, 1, "Pikachu", model.RarityCommon, model.CardTypePokemon)

	// A collection whose ID reads like an image path still lists cards.
	var listed struct {
		Cards []model.Card `json:"cards"`
	}
	if resp := ts.do(t, "GET", "/api/cards/collection/image", ts.AdminToken, nil, &listed); resp.StatusCode != http.StatusOK {
		t.Errorf("list by collection: expected 200, got %d", resp.StatusCode)
	}
	if len(listed.Cards) != 0 {
		t.Errorf("expected no cards, got %d", len(listed.Cards))
	}
	if resp := ts.do(t, "GET", "/api/cards/collection/"+c.ID, ts.AdminToken, nil, &listed); resp.StatusCode != http.StatusOK || len(listed.Cards) != 1 {
		t.Errorf("list by collection: expected 1 card, got %d (%d)", len(listed.Cards), resp.StatusCode)
	}

	// URL-backed cards keep their external image, so nothing is served here.
	if resp := ts.do(t, "GET", "/api/card-images/"+card.ID, "", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("image for url card: expected 404, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "GET", "/api/card-images/nope", "", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown image: expected 404, got %d", resp.StatusCode)
	}
}

func TestPlayerRegistration(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.registerPlayer(t, "  Misty ")

	if resp := ts.do(t, "POST", "/api/players", "", map[string]string{"name": "misty"}, nil); resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for taken name, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "POST", "/api/players", "", map[string]string{"name": "M"}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for short name, got %d", resp.StatusCode)
	}

	var login loginResponse
	resp := ts.do(t, "POST", "/api/players/login", "", map[string]string{"name": "MISTY"}, &login)
	if resp.StatusCode != http.StatusOK || login.User.Username != "Misty" || login.User.Role != model.RolePlayer {
		t.Errorf("unexpected player login: %d %+v", resp.StatusCode, login.User)
	}
	if resp := ts.do(t, "POST", "/api/players/login", "", map[string]string{"name": "Brock"}, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown player, got %d", resp.StatusCode)
	}

	// Players cannot manage collections or list players.
	if resp := ts.do(t, "POST", "/api/collections", login.Token, map[string]any{"name": "X", "description": "x", "total_cards_in_set": 1}, nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for player creating collection, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "GET", "/api/players", login.Token, nil, nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for player listing players, got %d", resp.StatusCode)
	}

	var players struct {
		Players []model.User `json:"players"`
	}
	ts.do(t, "GET", "/api/players", ts.AdminToken, nil, &players)
	if len(players.Players) != 1 || players.Players[0].Username != "Misty" {
		t.Errorf("unexpected players: %+v", players.Players)
	}
}

func TestOpenPackAndReconcile(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, userID := ts.registerPlayer(t, "Ash")

	c := ts.createCollection(t, "Base", 5)
	ts.createCard(t, c.ID, 1, "Fire Energy", model.RarityCommon, model.CardTypeEnergy)
	ts.createCard(t, c.ID, 2, "Professor Oak", model.RarityUncommon, model.CardTypeTrainer)
	ts.createCard(t, c.ID, 4, "Charmander", model.RarityCommon, model.CardTypePokemon)

	var opened openPackResponse
	resp := ts.do(t, "POST", "/api/open-pack", token, map[string]string{"collection_id": c.ID}, &opened)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open pack: expected 200, got %d", resp.StatusCode)
	}
	if len(opened.Cards) != 6 || opened.CollectionName != "Base" {
		t.Fatalf("unexpected pack: %+v", opened)
	}
	if opened.Cards[0].CardType != model.CardTypeEnergy || opened.Cards[1].CardType != model.CardTypeTrainer {
		t.Errorf("expected energy then trainer, got %s, %s", opened.Cards[0].CardType, opened.Cards[1].CardType)
	}

	path := fmt.Sprintf("/api/user-collection/%d", userID)
	var uc model.UserCollection
	ts.do(t, "GET", path, token, nil, &uc)
	if uc.TotalPacksOpened != 1 || uc.TotalCards != 6 || len(uc.CollectedCards) != 6 {
		t.Errorf("unexpected user collection: packs=%d total=%d", uc.TotalPacksOpened, uc.TotalCards)
	}
	if uc.CollectionStats[c.ID].Count != 6 {
		t.Errorf("unexpected collection stats: %+v", uc.CollectionStats)
	}

	// Full view: five slots, slots 3 and 5 missing.
	var view reconcile.View
	ts.do(t, "GET", path+"/collections/"+c.ID+"?sort=number", token, nil, &view)
	if len(view.Rows) != 5 || view.SetSize != 5 || view.TotalOwned != 6 || view.Fallback {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Rows[2].Exists || view.Rows[2].Owned || view.Rows[2].Quantity != 0 {
		t.Errorf("expected slot 3 to be a missing placeholder, got %+v", view.Rows[2])
	}
	owned := 0
	for _, row := range view.Rows {
		owned += row.Quantity
	}
	if owned != 6 {
		t.Errorf("expected quantities to sum to 6, got %d", owned)
	}

	// Owned only.
	ts.do(t, "GET", path+"/collections/"+c.ID+"?show_missing=false&sort=name", token, nil, &view)
	if view.ShowMissing || view.SetSize != 5 {
		t.Errorf("unexpected view flags: %+v", view)
	}
	for _, row := range view.Rows {
		if !row.Owned {
			t.Errorf("expected only owned rows, got %+v", row)
		}
	}

	// Unknown collection falls back to owned cards without a manifest.
	ts.do(t, "GET", path+"/collections/nope", token, nil, &view)
	if !view.Fallback || len(view.Rows) != 0 {
		t.Errorf("expected empty fallback view, got %+v", view)
	}

	if resp := ts.do(t, "GET", path+"/collections/"+c.ID+"?show_missing=maybe", token, nil, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad show_missing, got %d", resp.StatusCode)
	}
}

func TestUserCollectionUnknownUser(t *testing.T) {
	ts := setupTestServer(t, Options{})

	var uc model.UserCollection
	resp := ts.do(t, "GET", "/api/user-collection/4242", ts.AdminToken, nil, &uc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if uc.TotalCards != 0 || uc.CollectedCards == nil {
		t.Errorf("expected empty summary, got %+v", uc)
	}
	if resp := ts.do(t, "GET", "/api/user-collection/abc", ts.AdminToken, nil, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric id, got %d", resp.StatusCode)
	}
}

func TestOpenPackErrors(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, _ := ts.registerPlayer(t, "Ash")

	if resp := ts.do(t, "POST", "/api/open-pack", token, map[string]string{"collection_id": "nope"}, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown collection, got %d", resp.StatusCode)
	}

	empty := ts.createCollection(t, "Empty", 3)
	var errBody map[string]string
	resp := ts.do(t, "POST", "/api/open-pack", token, map[string]string{"collection_id": empty.ID}, &errBody)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty collection, got %d", resp.StatusCode)
	}
	if errBody["error"] != "No cards available in this collection" {
		t.Errorf("unexpected error message: %q", errBody["error"])
	}

	if resp := ts.do(t, "POST", "/api/open-pack", "", map[string]string{"collection_id": empty.ID}, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestOpenPackRateLimit(t *testing.T) {
	ts := setupTestServer(t, Options{PackLimiter: NewUserLimiter(1)})
	ash, _ := ts.registerPlayer(t, "Ash")
	misty, _ := ts.registerPlayer(t, "Misty")

	c := ts.createCollection(t, "Base", 1)
	ts.createCard(t, c.ID, 1, "Pikachu", model.RarityCommon, model.CardTypePokemon)
	body := map[string]string{"collection_id": c.ID}

	if resp := ts.do(t, "POST", "/api/open-pack", ash, body, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("first pack: expected 200, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "POST", "/api/open-pack", ash, body, nil); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second pack: expected 429, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "POST", "/api/open-pack", misty, body, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("other player: expected 200, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, _ := ts.registerPlayer(t, "Ash")

	if resp := ts.do(t, "GET", "/api/collections", token, nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "POST", "/api/auth/logout", token, nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "GET", "/api/collections", token, nil, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestChangePassword(t *testing.T) {
	ts := setupTestServer(t, Options{})

	if resp := ts.do(t, "PUT", "/api/auth/password", ts.AdminToken, map[string]string{"current_password": "password", "new_password": "short"}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "PUT", "/api/auth/password", ts.AdminToken, map[string]string{"current_password": "nope", "new_password": "new-password"}, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "PUT", "/api/auth/password", ts.AdminToken, map[string]string{"current_password": "password", "new_password": "new-password"}, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp := ts.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin", "password": "new-password"}, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("expected login with new password, got %d", resp.StatusCode)
	}
}

// recordingOverviews is an in-memory overview cache that records invalidations.
type recordingOverviews struct {
	mu          sync.Mutex
	entries     map[string]*model.Overview
	invalidated []string
}

func (c *recordingOverviews) Get(_ context.Context, id string, revision int64) (*model.Overview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ov, ok := c.entries[id]
	if !ok || ov.Collection.Revision != revision {
		return nil, false
	}
	return ov, true
}

func (c *recordingOverviews) Set(_ context.Context, ov *model.Overview) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ov.Collection.ID] = ov
}

func (c *recordingOverviews) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
}

func TestOverviewCacheInvalidation(t *testing.T) {
	overviews := &recordingOverviews{entries: map[string]*model.Overview{}}
	ts := setupTestServer(t, Options{Overviews: overviews})
	c := ts.createCollection(t, "Base", 3)

	var ov model.Overview
	ts.do(t, "GET", "/api/collection-overview/"+c.ID, ts.AdminToken, nil, &ov)
	if _, ok := overviews.Get(context.Background(), c.ID, 0); !ok {
		t.Fatal("expected overview to be cached")
	}

	card := ts.createCard(t, c.ID, 1, "Abra", model.RarityCommon, model.CardTypePokemon)
	ts.do(t, "GET", "/api/collection-overview/"+c.ID, ts.AdminToken, nil, &ov)
	if ov.ActualCardsCreated != 1 {
		t.Errorf("expected fresh overview after card creation, got %d cards", ov.ActualCardsCreated)
	}

	ts.do(t, "DELETE", "/api/cards/"+card.ID, ts.AdminToken, nil, nil)
	ts.do(t, "GET", "/api/collection-overview/"+c.ID, ts.AdminToken, nil, &ov)
	if ov.ActualCardsCreated != 0 {
		t.Errorf("expected fresh overview after card deletion, got %d cards", ov.ActualCardsCreated)
	}

	overviews.mu.Lock()
	defer overviews.mu.Unlock()
	if len(overviews.invalidated) != 2 {
		t.Errorf("expected 2 invalidations, got %v", overviews.invalidated)
	}
}

func TestOverviewCacheIgnoresLateStaleWrite(t *testing.T) {
	overviews := &recordingOverviews{entries: map[string]*model.Overview{}}
	ts := setupTestServer(t, Options{Overviews: overviews})
	c := ts.createCollection(t, "Jungle", 3)

	var ov model.Overview
	ts.do(t, "GET", "/api/collection-overview/"+c.ID, ts.AdminToken, nil, &ov)
	stale, ok := overviews.Get(context.Background(), c.ID, 0)
	if !ok {
		t.Fatal("expected overview to be cached")
	}

	ts.createCard(t, c.ID, 1, "Scyther", model.RarityRare, model.CardTypePokemon)

	// A reader that loaded the manifest before the card was committed stores
	// it after the write has already invalidated the entry.
	overviews.Set(context.Background(), stale)

	ts.do(t, "GET", "/api/collection-overview/"+c.ID, ts.AdminToken, nil, &ov)
	if ov.ActualCardsCreated != 1 || !ov.CompleteSet[0].Exists {
		t.Errorf("expected overview with the new card, got %d cards", ov.ActualCardsCreated)
	}
	if ov.Collection.Revision != 1 {
		t.Errorf("expected revision 1, got %d", ov.Collection.Revision)
	}
}

func TestUserLimiterPrune(t *testing.T) {
	l := NewUserLimiter(2)
	l.Allow(1)
	l.Allow(2)
	if n := l.Prune(-time.Minute); n != 2 {
		t.Errorf("expected 2 pruned, got %d", n)
	}
	if NewUserLimiter(0) != nil {
		t.Error("expected nil limiter when disabled")
	}
	var disabled *UserLimiter
	if !disabled.Allow(1) {
		t.Error("nil limiter should allow")
	}
}
