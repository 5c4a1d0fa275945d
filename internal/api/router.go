package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/tcgpocket/internal/cache"
	"github.com/erazemk/tcgpocket/internal/model"
	"github.com/erazemk/tcgpocket/internal/pack"
)

// Options carries the router's collaborators beyond the database.
type Options struct {
	// Opener draws packs. Nil uses the default odds.
	Opener *pack.Opener
	// Overviews caches collection overviews. Nil disables caching.
	Overviews cache.Overviews
	// PackLimiter throttles pack opening per user. Nil allows everything.
	PackLimiter *UserLimiter
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) http.Handler {
	if opts.Opener == nil {
		opener, err := pack.NewOpener(pack.DefaultConfig(), nil)
		if err != nil {
			// The default config is always valid.
			panic(err)
		}
		opts.Opener = opener
	}
	if opts.Overviews == nil {
		opts.Overviews = cache.Nop{}
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	playersHandler := &PlayersHandler{DB: db, JWTSecret: jwtSecret}
	collectionsHandler := &CollectionsHandler{DB: db, Overviews: opts.Overviews}
	cardsHandler := &CardsHandler{DB: db, Overviews: opts.Overviews}
	packsHandler := &PacksHandler{DB: db, Opener: opts.Opener}
	userCollectionHandler := &UserCollectionHandler{DB: db, Overviews: opts.Overviews}
	metaHandler := &MetaHandler{Opener: opts.Opener}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requirePlayer := RequireRole(model.RolePlayer)
	packLimit := RateLimit(opts.PackLimiter)

	// Public.
	mux.HandleFunc("GET /api/health", metaHandler.Health)
	mux.HandleFunc("GET /api/rarities", metaHandler.Rarities)
	mux.HandleFunc("GET /api/card-types", metaHandler.CardTypes)
	mux.HandleFunc("GET /api/pack-probabilities", metaHandler.PackProbabilities)
	mux.HandleFunc("GET /api/card-images/{id}", cardsHandler.GetImage)

	// Sign in.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/players", playersHandler.Register)
	mux.HandleFunc("POST /api/players/login", playersHandler.Login)
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(requireAdmin(http.HandlerFunc(authHandler.ChangePassword))))

	// Players (admin only).
	mux.Handle("GET /api/players", authMW(requireAdmin(http.HandlerFunc(playersHandler.List))))

	// Collections: read (all roles), write (admin).
	mux.Handle("GET /api/collections", authMW(http.HandlerFunc(collectionsHandler.List)))
	mux.Handle("POST /api/collections", authMW(requireAdmin(http.HandlerFunc(collectionsHandler.Create))))
	mux.Handle("DELETE /api/collections/{id}", authMW(requireAdmin(http.HandlerFunc(collectionsHandler.Delete))))
	mux.Handle("GET /api/collection-overview/{id}", authMW(http.HandlerFunc(collectionsHandler.Overview)))

	// Cards: read (all roles), write (admin).
	mux.Handle("GET /api/cards", authMW(http.HandlerFunc(cardsHandler.List)))
	mux.Handle("GET /api/cards/collection/{id}", authMW(http.HandlerFunc(cardsHandler.ListByCollection)))
	mux.Handle("POST /api/cards", authMW(requireAdmin(http.HandlerFunc(cardsHandler.Create))))
	mux.Handle("POST /api/cards-from-url", authMW(requireAdmin(http.HandlerFunc(cardsHandler.CreateFromURL))))
	mux.Handle("DELETE /api/cards/{id}", authMW(requireAdmin(http.HandlerFunc(cardsHandler.Delete))))

	// Packs.
	mux.Handle("POST /api/open-pack", authMW(requirePlayer(packLimit(http.HandlerFunc(packsHandler.Open)))))

	// User collections.
	mux.Handle("GET /api/user-collection/{user_id}", authMW(http.HandlerFunc(userCollectionHandler.Get)))
	mux.Handle("GET /api/user-collection/{user_id}/collections/{collection_id}", authMW(http.HandlerFunc(userCollectionHandler.View)))

	return mux
}
