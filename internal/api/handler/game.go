package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cardroom/cardroom/internal/api/middleware"
	"github.com/cardroom/cardroom/internal/api/request"
	"github.com/cardroom/cardroom/internal/api/response"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/services/membership"
	"github.com/cardroom/cardroom/internal/services/registry"
	"github.com/cardroom/cardroom/internal/services/turn"
)

// GameHandler handles game session endpoints
type GameHandler struct {
	registry   *registry.Service
	membership *membership.Controller
	turn       *turn.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(registryService *registry.Service, membershipController *membership.Controller, turnController *turn.Controller) *GameHandler {
	return &GameHandler{
		registry:   registryService,
		membership: membershipController,
		turn:       turnController,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())

	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = request.CreateGameRequest{}
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = id.DisplayName
	}

	game, err := h.registry.CreateGame(r.Context(), id.ID, displayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(game))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.registry.ListOpenGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromModel(games))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["id"])

	game, err := h.registry.GetGame(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(game))
}

// Join handles POST /api/v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())
	gameID := model.GameID(mux.Vars(r)["id"])

	var req request.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = request.JoinGameRequest{}
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = id.DisplayName
	}

	result, err := h.membership.Join(r.Context(), gameID, id.ID, displayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponse{
		Game:          response.GameFromModel(result.Game),
		Player:        response.PlayerFromModel(result.Player),
		AlreadyJoined: result.AlreadyJoined,
	})
}

// Start handles POST /api/v1/games/{id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())
	gameID := model.GameID(mux.Vars(r)["id"])

	result, err := h.turn.Start(r.Context(), gameID, id.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StartResponse{
		Game:           response.GameFromModel(result.Game),
		AlreadyStarted: result.AlreadyStarted,
	})
}

// Roster handles GET /api/v1/games/{id}/players
func (h *GameHandler) Roster(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["id"])

	roster, err := h.membership.Roster(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RosterFromModel(roster))
}
