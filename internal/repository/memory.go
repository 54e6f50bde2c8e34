package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

// memGame keeps games in process. Values are cloned on the way in and out, so callers never share state.
type memGame struct {
	mu    sync.RWMutex
	games map[string]*entity.Game
}

func NewMemoryGameRepository() GameRepository {
	return &memGame{
		games: make(map[string]*entity.Game),
	}
}

func (that *memGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = game.Clone()

	return nil
}

func (that *memGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return &entity.Game{}, ErrGameNotFound
	}

	return game.Clone(), nil
}

func (that *memGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, id)

	return nil
}

func (that *memGame) List(_ context.Context) ([]*entity.Game, error) {
	that.mu.RLock()
	games := make([]*entity.Game, 0, len(that.games))
	for _, game := range that.games {
		games = append(games, game.Clone())
	}
	that.mu.RUnlock()

	sortByCreation(games)

	return games, nil
}

type memPlayer struct {
	mu      sync.RWMutex
	players map[string]*entity.Player
}

func NewMemoryPlayerRepository() PlayerRepository {
	return &memPlayer{
		players: make(map[string]*entity.Player),
	}
}

func (that *memPlayer) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.players[player.ID] = player.Clone()

	return nil
}

func (that *memPlayer) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[id]
	if !ok {
		return &entity.Player{}, ErrPlayerNotFound
	}

	return player.Clone(), nil
}
