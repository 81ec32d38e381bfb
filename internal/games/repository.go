package games

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bingoroom/internal/room"
)

// ErrGameNotFound indicates no game exists for the given slug.
var ErrGameNotFound = errors.New("game not found")

// DB defines what the repository needs from the database layer.
// *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements game metadata data access on Postgres.
type Repository struct {
	db DB
}

// NewRepository creates a games repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// CreateGame inserts a new game row.
func (r *Repository) CreateGame(ctx context.Context, game Game) (*Game, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO games (id, name, slug, variant, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, slug, variant, password, created_at`,
		game.ID, game.Name, game.Slug, game.Variant, game.Password,
	)

	created, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return created, nil
}

// GetGameBySlug fetches one game by its slug.
func (r *Repository) GetGameBySlug(ctx context.Context, slug string) (*Game, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, slug, variant, password, created_at
		FROM games WHERE slug = $1`,
		slug,
	)

	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game by slug: %w", err)
	}
	return game, nil
}

// ListGames returns all games, newest first.
func (r *Repository) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, variant, password, created_at
		FROM games ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read games: %w", err)
	}
	return games, nil
}

// DeleteGame removes a game by slug.
func (r *Repository) DeleteGame(ctx context.Context, slug string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM games WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// RoomMetadata implements room.MetadataSource so the room registry can
// pick up stored names and variants for the slugs it opens.
func (r *Repository) RoomMetadata(ctx context.Context, slug string) (room.Metadata, bool) {
	game, err := r.GetGameBySlug(ctx, slug)
	if err != nil {
		return room.Metadata{}, false
	}
	return room.Metadata{
		Name:     game.Name,
		Game:     game.Variant,
		Password: game.Password,
	}, true
}

func scanGame(row pgx.Row) (*Game, error) {
	var game Game
	err := row.Scan(&game.ID, &game.Name, &game.Slug, &game.Variant, &game.Password, &game.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &game, nil
}
