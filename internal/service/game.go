package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
	"github.com/rocketscienceinc/xo3d-backend/internal/pkg"
	"github.com/rocketscienceinc/xo3d-backend/internal/repository"
)

type GameService interface {
	CreateGame(ctx context.Context, creator *entity.Player, opts entity.RoomOptions) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, gameID string) error

	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	ListGames(ctx context.Context) ([]*entity.Game, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Game, error)
}

type gameService struct {
	gameRepo gameRepo
}

func NewGameService(gameRepo gameRepo) GameService {
	return &gameService{
		gameRepo: gameRepo,
	}
}

// CreateGame builds and stores an empty room. Room names are unique, ignoring case.
func (that *gameService) CreateGame(ctx context.Context, creator *entity.Player, opts entity.RoomOptions) (*entity.Game, error) {
	if name := strings.TrimSpace(opts.Name); name != "" {
		taken, err := that.nameTaken(ctx, name)
		if err != nil {
			return nil, err
		}

		if taken {
			return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNameTaken, name)
		}
	}

	game := entity.NewGame(pkg.GenerateGameID(), creator, opts)
	if err := game.SetPassword(opts.Password); err != nil {
		return nil, err
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game in storage: %w", err)
	}

	return game, nil
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}

	return game, nil
}

func (that *gameService) ListGames(ctx context.Context) ([]*entity.Game, error) {
	games, err := that.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games from storage: %w", err)
	}

	return games, nil
}

func (that *gameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gameService) DeleteGame(ctx context.Context, gameID string) error {
	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

func (that *gameService) nameTaken(ctx context.Context, name string) (bool, error) {
	games, err := that.ListGames(ctx)
	if err != nil {
		return false, err
	}

	for _, game := range games {
		if strings.EqualFold(game.Name, name) {
			return true, nil
		}
	}

	return false, nil
}
