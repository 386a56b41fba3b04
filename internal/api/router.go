package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cardroom/cardroom/internal/api/handler"
	apimiddleware "github.com/cardroom/cardroom/internal/api/middleware"
	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/middleware"
	"github.com/cardroom/cardroom/internal/services/identity"
	"github.com/cardroom/cardroom/internal/services/membership"
	"github.com/cardroom/cardroom/internal/services/registry"
	"github.com/cardroom/cardroom/internal/services/turn"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger               *slog.Logger
	IdentityService      *identity.Service
	RegistryService      *registry.Service
	MembershipController *membership.Controller
	TurnController       *turn.Controller
	Bus                  *feed.Bus
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	identityHandler := handler.NewIdentityHandler(cfg.IdentityService)
	gameHandler := handler.NewGameHandler(cfg.RegistryService, cfg.MembershipController, cfg.TurnController)
	eventsHandler := handler.NewEventsHandler(cfg.Bus)

	authMiddleware := apimiddleware.Auth(cfg.IdentityService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Identity routes; session issuance needs no prior auth
	api.HandleFunc("/identities/guest", identityHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/identities/register", identityHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/identities/login", identityHandler.Login).Methods(http.MethodPost)

	identities := api.PathPrefix("/identities").Subrouter()
	identities.Use(authMiddleware)
	identities.HandleFunc("/me", identityHandler.GetMe).Methods(http.MethodGet)
	identities.HandleFunc("/logout", identityHandler.Logout).Methods(http.MethodPost)

	// Game session routes, all authenticated
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("", gameHandler.List).Methods(http.MethodGet)
	games.HandleFunc("/events", eventsHandler.StreamGames).Methods(http.MethodGet)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}/join", gameHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/{id}/start", gameHandler.Start).Methods(http.MethodPost)
	games.HandleFunc("/{id}/players", gameHandler.Roster).Methods(http.MethodGet)
	games.HandleFunc("/{id}/events", eventsHandler.StreamGame).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
