package games

import (
	"time"

	"github.com/google/uuid"
)

// Game is the stored metadata for one bingo game. The live board and
// chat state belong to the room engine, not the store.
type Game struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Variant   string    `json:"variant"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateGameRequest is the payload for creating a game.
type CreateGameRequest struct {
	Name     string `json:"name"`
	Variant  string `json:"variant"`
	Password string `json:"password"`
}

// JoinGameRequest is the payload for minting a room token.
type JoinGameRequest struct {
	Nickname string `json:"nickname"`
	Color    string `json:"color"`
	Password string `json:"password"`
}

// JoinGameResponse carries the minted token back to the client.
type JoinGameResponse struct {
	AuthToken string `json:"authToken"`
}
