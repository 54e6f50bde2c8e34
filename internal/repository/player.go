package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

const (
	playerKeyPrefix = "player:"

	// PlayerTTL is how long an untouched player record survives. Every save extends it.
	PlayerTTL = 7 * 24 * time.Hour
)

// hash fields of a player record
const (
	fieldName   = "name"
	fieldMark   = "mark"
	fieldGameID = "game_id"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

// dbPlayer keeps each player as a redis hash at player:<id>.
type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func playerKey(id string) string {
	return playerKeyPrefix + id
}

// CreateOrUpdate overwrites every field and refreshes the expiry in one transaction.
func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	key := playerKey(player.ID)

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldName, player.Name,
			fieldMark, player.Mark.String(),
			fieldGameID, player.GameID,
		)
		pipe.Expire(ctx, key, PlayerTTL)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save player %s: %w", player.ID, err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	fields, err := that.client.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return &entity.Player{}, fmt.Errorf("failed to get player by ID: %w", err)
	}

	// HGETALL answers a missing key with an empty map
	if len(fields) == 0 {
		return &entity.Player{}, ErrPlayerNotFound
	}

	mark, err := entity.ParseMark(fields[fieldMark])
	if err != nil {
		return &entity.Player{}, fmt.Errorf("failed to decode player %s: %w", id, err)
	}

	return &entity.Player{
		ID:     id,
		Name:   fields[fieldName],
		Mark:   mark,
		GameID: fields[fieldGameID],
	}, nil
}
