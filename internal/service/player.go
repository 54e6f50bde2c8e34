package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
	"github.com/rocketscienceinc/xo3d-backend/internal/pkg"
	"github.com/rocketscienceinc/xo3d-backend/internal/repository"
)

var ErrReservedPlayerID = errors.New("player id is reserved")

type PlayerService interface {
	GetOrCreate(ctx context.Context, id, name string) (*entity.Player, error)
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	Update(ctx context.Context, player *entity.Player) error
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type playerService struct {
	playerRepo playerRepo
}

func NewPlayerService(playerRepo playerRepo) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
	}
}

// GetOrCreate returns the stored player, creating it when unknown. An empty id gets a fresh one.
// A non-empty name replaces the stored display name.
func (that *playerService) GetOrCreate(ctx context.Context, id, name string) (*entity.Player, error) {
	name = strings.TrimSpace(name)
	if id == "" {
		id = pkg.GeneratePlayerID()
	}

	if id == entity.BotPlayerID {
		return nil, fmt.Errorf("%w: %s", ErrReservedPlayerID, id)
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrPlayerNotFound):
		player = &entity.Player{ID: id}
	case err != nil:
		return nil, fmt.Errorf("get player by id %w", err)
	case name == "" || name == player.Name:
		return player, nil
	}

	if name != "" {
		player.Name = name
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("create player %w", err)
	}

	return player, nil
}

func (that *playerService) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	existingPlayer, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get player by id %w", err)
	}

	return existingPlayer, nil
}

func (that *playerService) Update(ctx context.Context, player *entity.Player) error {
	if player.IsBot() {
		return nil
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("update player %w", err)
	}

	return nil
}
