package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"bingoroom/internal/board"
)

// roomClaims is the JWT payload minted when a participant joins a game.
type roomClaims struct {
	Nickname string `json:"nickname"`
	Color    string `json:"color"`
	jwt.RegisteredClaims
}

// JWTResolver issues and verifies HMAC-signed room tokens.
type JWTResolver struct {
	secret []byte
	expiry time.Duration
}

// NewJWTResolver creates a resolver signing with the given secret.
// expiry bounds how long an issued token stays valid.
func NewJWTResolver(secret string, expiry time.Duration) (*JWTResolver, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTResolver{secret: []byte(secret), expiry: expiry}, nil
}

// Issue mints a signed token for the given participant.
func (r *JWTResolver) Issue(nickname string, color board.Color) (string, error) {
	now := time.Now()
	claims := roomClaims{
		Nickname: nickname,
		Color:    string(color),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies a token and returns the identity it carries.
// Any verification or decoding failure maps to ErrInvalidToken.
func (r *JWTResolver) Resolve(token string) (Identity, error) {
	var claims roomClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Nickname == "" || claims.Color == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		Nickname: claims.Nickname,
		Color:    board.Color(claims.Color),
	}, nil
}
