package games

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bingoroom/internal/board"
)

// Store defines what the handler needs from the games repository.
type Store interface {
	CreateGame(ctx context.Context, game Game) (*Game, error)
	GetGameBySlug(ctx context.Context, slug string) (*Game, error)
	ListGames(ctx context.Context) ([]Game, error)
	DeleteGame(ctx context.Context, slug string) error
}

// TokenIssuer mints room tokens for authenticated participants.
type TokenIssuer interface {
	Issue(nickname string, color board.Color) (string, error)
}

// Handler serves the game metadata CRUD surface and the token mint
// endpoint. Everything here is plain request/response glue; the
// realtime engine never goes through these routes.
type Handler struct {
	store  Store
	issuer TokenIssuer
}

// NewHandler creates the games HTTP handler.
func NewHandler(store Store, issuer TokenIssuer) *Handler {
	return &Handler{store: store, issuer: issuer}
}

// RegisterRoutes registers the CRUD routes with an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/games", h.handleCreate)
	mux.HandleFunc("GET /api/games", h.handleList)
	mux.HandleFunc("GET /api/games/{slug}", h.handleGet)
	mux.HandleFunc("DELETE /api/games/{slug}", h.handleDelete)
	mux.HandleFunc("POST /api/games/{slug}/join", h.handleJoin)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	game := Game{
		ID:       uuid.New(),
		Name:     req.Name,
		Slug:     newSlug(req.Name),
		Variant:  req.Variant,
		Password: req.Password,
	}

	created, err := h.store.CreateGame(r.Context(), game)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create game")
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	games, err := h.store.ListGames(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list games")
		writeError(w, http.StatusInternalServerError, "failed to list games")
		return
	}
	if games == nil {
		games = []Game{}
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	game, err := h.store.GetGameBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("failed to get game")
		writeError(w, http.StatusInternalServerError, "failed to get game")
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	if err := h.store.DeleteGame(r.Context(), slug); err != nil {
		if errors.Is(err, ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("failed to delete game")
		writeError(w, http.StatusInternalServerError, "failed to delete game")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Nickname == "" || req.Color == "" {
		writeError(w, http.StatusBadRequest, "nickname and color are required")
		return
	}

	game, err := h.store.GetGameBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("failed to get game")
		writeError(w, http.StatusInternalServerError, "failed to get game")
		return
	}
	if game.Password != "" && game.Password != req.Password {
		writeError(w, http.StatusForbidden, "wrong password")
		return
	}

	token, err := h.issuer.Issue(req.Nickname, board.Color(req.Color))
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("failed to issue token")
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, JoinGameResponse{AuthToken: token})
}

// newSlug derives a URL-safe room key from the game name, with a short
// random suffix to keep slugs unique across same-named games.
func newSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "game"
	}

	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("%s-%s", base, suffix)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
