package games

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bingoroom/internal/identity"
)

type fakeStore struct {
	games map[string]Game
}

func newFakeStore() *fakeStore {
	return &fakeStore{games: make(map[string]Game)}
}

func (s *fakeStore) CreateGame(ctx context.Context, game Game) (*Game, error) {
	game.CreatedAt = time.Now()
	s.games[game.Slug] = game
	return &game, nil
}

func (s *fakeStore) GetGameBySlug(ctx context.Context, slug string) (*Game, error) {
	game, ok := s.games[slug]
	if !ok {
		return nil, ErrGameNotFound
	}
	return &game, nil
}

func (s *fakeStore) ListGames(ctx context.Context) ([]Game, error) {
	var out []Game
	for _, game := range s.games {
		out = append(out, game)
	}
	return out, nil
}

func (s *fakeStore) DeleteGame(ctx context.Context, slug string) error {
	if _, ok := s.games[slug]; !ok {
		return ErrGameNotFound
	}
	delete(s.games, slug)
	return nil
}

func newTestHandler(t *testing.T) (*http.ServeMux, *fakeStore, *identity.JWTResolver) {
	t.Helper()

	resolver, err := identity.NewJWTResolver("games-test-secret", time.Hour)
	require.NoError(t, err)

	store := newFakeStore()
	mux := http.NewServeMux()
	NewHandler(store, resolver).RegisterRoutes(mux)
	return mux, store, resolver
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestCreateGame(t *testing.T) {
	mux, store, _ := newTestHandler(t)

	w := doRequest(t, mux, http.MethodPost, "/api/games", `{"name":"Friday Night Bingo","variant":"adventure"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created Game
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Friday Night Bingo", created.Name)
	assert.True(t, strings.HasPrefix(created.Slug, "friday-night-bingo-"), created.Slug)
	assert.Contains(t, store.games, created.Slug)
}

func TestCreateGameRequiresName(t *testing.T) {
	mux, _, _ := newTestHandler(t)

	w := doRequest(t, mux, http.MethodPost, "/api/games", `{"variant":"adventure"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGame(t *testing.T) {
	mux, store, _ := newTestHandler(t)
	store.games["weekly-race"] = Game{Name: "Weekly Race", Slug: "weekly-race"}

	w := doRequest(t, mux, http.MethodGet, "/api/games/weekly-race", "")
	require.Equal(t, http.StatusOK, w.Code)

	var game Game
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &game))
	assert.Equal(t, "Weekly Race", game.Name)
}

func TestGetGameNotFound(t *testing.T) {
	mux, _, _ := newTestHandler(t)

	w := doRequest(t, mux, http.MethodGet, "/api/games/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteGame(t *testing.T) {
	mux, store, _ := newTestHandler(t)
	store.games["weekly-race"] = Game{Slug: "weekly-race"}

	w := doRequest(t, mux, http.MethodDelete, "/api/games/weekly-race", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, store.games, "weekly-race")
}

func TestJoinMintsResolvableToken(t *testing.T) {
	mux, store, resolver := newTestHandler(t)
	store.games["weekly-race"] = Game{Slug: "weekly-race"}

	w := doRequest(t, mux, http.MethodPost, "/api/games/weekly-race/join", `{"nickname":"alice","color":"red"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp JoinGameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	id, err := resolver.Resolve(resp.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Nickname)
	assert.Equal(t, "red", string(id.Color))
}

func TestJoinEnforcesPassword(t *testing.T) {
	mux, store, _ := newTestHandler(t)
	store.games["locked"] = Game{Slug: "locked", Password: "hunter2"}

	w := doRequest(t, mux, http.MethodPost, "/api/games/locked/join", `{"nickname":"alice","color":"red"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, mux, http.MethodPost, "/api/games/locked/join", `{"nickname":"alice","color":"red","password":"hunter2"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJoinRequiresNicknameAndColor(t *testing.T) {
	mux, store, _ := newTestHandler(t)
	store.games["weekly-race"] = Game{Slug: "weekly-race"}

	w := doRequest(t, mux, http.MethodPost, "/api/games/weekly-race/join", `{"nickname":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
