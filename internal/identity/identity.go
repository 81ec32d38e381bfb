// Package identity turns opaque auth tokens into participant
// identities. Every room action carries its own token and is resolved
// independently; identities are never cached per connection, so token
// rotation takes effect on the very next action.
package identity

import (
	"errors"

	"bingoroom/internal/board"
)

// ErrInvalidToken indicates a token that could not be verified or decoded.
var ErrInvalidToken = errors.New("invalid auth token")

// Identity is the authenticated participant behind a single action.
type Identity struct {
	Nickname string
	Color    board.Color
}

// Resolver verifies an opaque token and returns the identity it encodes.
type Resolver interface {
	Resolve(token string) (Identity, error)
}
