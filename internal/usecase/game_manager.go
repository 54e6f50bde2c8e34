package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
	"github.com/rocketscienceinc/xo3d-backend/internal/tictactoe"
)

const botTaskTimeout = 5 * time.Second

// Publisher receives every snapshot produced by the manager.
type Publisher interface {
	Publish(ctx context.Context, state *entity.GameState) error
}

type playerService interface {
	GetOrCreate(ctx context.Context, id, name string) (*entity.Player, error)
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	Update(ctx context.Context, player *entity.Player) error
}

type gameService interface {
	CreateGame(ctx context.Context, creator *entity.Player, opts entity.RoomOptions) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, gameID string) error
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	ListGames(ctx context.Context) ([]*entity.Game, error)
}

type botService interface {
	MakeTurn(game *entity.Game) ([]entity.Line, error)
}

// GameManager owns every session. Each mutating call runs load, change, save and publish under the
// session's lock, so concurrent calls for one session are applied one at a time.
type GameManager struct {
	logger *slog.Logger

	playerService playerService
	gameService   gameService
	botService    botService

	scheduler Scheduler
	botDelay  time.Duration

	sessions  *keyedMutex
	directory sync.Mutex

	publishersMu sync.RWMutex
	publishers   []Publisher
}

func NewGameManager(
	logger *slog.Logger,
	playerService playerService,
	gameService gameService,
	botService botService,
	scheduler Scheduler,
	botDelay time.Duration,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "gameManager"),

		playerService: playerService,
		gameService:   gameService,
		botService:    botService,

		scheduler: scheduler,
		botDelay:  botDelay,

		sessions: newKeyedMutex(),
	}
}

// AddPublisher registers an observer for game snapshots.
func (that *GameManager) AddPublisher(publisher Publisher) {
	that.publishersMu.Lock()
	defer that.publishersMu.Unlock()

	that.publishers = append(that.publishers, publisher)
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, playerID, name string) (*entity.Player, error) {
	player, err := that.playerService.GetOrCreate(ctx, playerID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create player: %w", err)
	}

	return player, nil
}

// CreateSession opens a room for the player. A player already seated elsewhere leaves that room first.
func (that *GameManager) CreateSession(ctx context.Context, playerID string, opts entity.RoomOptions) (*entity.GameState, error) {
	player, err := that.leaveCurrentSession(ctx, playerID, "")
	if err != nil {
		return nil, err
	}

	that.directory.Lock()
	game, err := that.gameService.CreateGame(ctx, player, opts)
	that.directory.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	unlock := that.sessions.Lock(game.ID)
	defer unlock()

	if err = tictactoe.Join(game, player); err != nil {
		return nil, fmt.Errorf("failed to join created game: %w", err)
	}

	if game.IsWithBot() {
		humanMark, _ := game.GetRandomMarks()
		player.Mark = humanMark

		if err = tictactoe.Join(game, entity.NewBotPlayer(game.ID, entity.MarkEmpty)); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	if err = that.save(ctx, game, player); err != nil {
		return nil, err
	}

	that.logger.Info("session created", "gameID", game.ID, "playerID", player.ID, "type", game.Type)

	that.publish(ctx, game)
	that.scheduleBotIfDue(game)

	return game.Snapshot(), nil
}

// JoinSession seats the player in an existing room. Joining a room the player is already in is a no-op.
func (that *GameManager) JoinSession(ctx context.Context, sessionID, playerID, password string) (*entity.GameState, error) {
	player, err := that.leaveCurrentSession(ctx, playerID, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := that.sessions.Lock(sessionID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.HasPlayer(playerID) {
		return game.Snapshot(), nil
	}

	if game.IsWithBot() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrSessionFull, sessionID)
	}

	if err = game.CheckPassword(password); err != nil {
		return nil, err
	}

	if err = tictactoe.Join(game, player); err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	if err = that.save(ctx, game, player); err != nil {
		return nil, err
	}

	that.logger.Info("player joined", "gameID", game.ID, "playerID", player.ID, "status", game.Status)

	that.publish(ctx, game)

	return game.Snapshot(), nil
}

func (that *GameManager) SubmitMove(ctx context.Context, sessionID, playerID string, coord entity.Coord) (*entity.GameState, error) {
	return that.mutate(ctx, sessionID, "submitMove", func(game *entity.Game) error {
		if _, err := tictactoe.MakeTurn(game, playerID, coord); err != nil {
			return fmt.Errorf("failed to make turn: %w", err)
		}

		return nil
	})
}

// RequestRestart records a rematch vote; the round restarts once every seated player voted.
func (that *GameManager) RequestRestart(ctx context.Context, sessionID, playerID string) (*entity.GameState, error) {
	return that.mutate(ctx, sessionID, "requestRestart", func(game *entity.Game) error {
		if _, err := tictactoe.RequestRestart(game, playerID); err != nil {
			return fmt.Errorf("failed to request restart: %w", err)
		}

		return nil
	})
}

func (that *GameManager) RequestEndGame(ctx context.Context, sessionID, playerID string) (*entity.GameState, error) {
	return that.mutate(ctx, sessionID, "requestEndGame", func(game *entity.Game) error {
		if err := tictactoe.EndGame(game, playerID); err != nil {
			return fmt.Errorf("failed to end game: %w", err)
		}

		return nil
	})
}

// NotifyPeerDisconnect ends the game for a player whose connection dropped.
func (that *GameManager) NotifyPeerDisconnect(ctx context.Context, sessionID, playerID string) (*entity.GameState, error) {
	return that.removePlayer(ctx, sessionID, playerID, "disconnect")
}

// LeaveSession is an explicit leave. It ends the game the same way a disconnect does.
func (that *GameManager) LeaveSession(ctx context.Context, sessionID, playerID string) (*entity.GameState, error) {
	return that.removePlayer(ctx, sessionID, playerID, "leave")
}

func (that *GameManager) GetState(ctx context.Context, sessionID string) (*entity.GameState, error) {
	game, err := that.gameService.GetGameByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game.Snapshot(), nil
}

func (that *GameManager) ListRooms(ctx context.Context) ([]entity.RoomInfo, error) {
	games, err := that.gameService.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]entity.RoomInfo, 0, len(games))
	for _, game := range games {
		rooms = append(rooms, game.RoomInfo())
	}

	return rooms, nil
}

// mutate runs change on the session under its lock, then saves, publishes and schedules the bot.
func (that *GameManager) mutate(ctx context.Context, sessionID, method string, change func(game *entity.Game) error) (*entity.GameState, error) {
	log := that.logger.With("method", method, "gameID", sessionID)

	unlock := that.sessions.Lock(sessionID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = change(game); err != nil {
		log.Debug("action rejected", "error", err)
		return nil, err
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	if game.IsFinished() {
		that.scheduler.Cancel(game.ID)
		log.Info("game finished", "winner", game.Winner, "scoreX", game.ScoreX, "scoreO", game.ScoreO)
	}

	that.publish(ctx, game)
	that.scheduleBotIfDue(game)

	return game.Snapshot(), nil
}

func (that *GameManager) removePlayer(ctx context.Context, sessionID, playerID, reason string) (*entity.GameState, error) {
	log := that.logger.With("method", "removePlayer", "gameID", sessionID, "playerID", playerID, "reason", reason)

	unlock := that.sessions.Lock(sessionID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = tictactoe.Disconnect(game, playerID); err != nil {
		return nil, fmt.Errorf("failed to remove player: %w", err)
	}

	that.scheduler.Cancel(game.ID)

	if err = that.releasePlayer(ctx, sessionID, playerID); err != nil {
		log.Error("failed to reset player", "error", err)
	}

	if len(game.HumanPlayers()) == 0 {
		if err = that.gameService.DeleteGame(ctx, game.ID); err != nil {
			return nil, fmt.Errorf("failed to delete empty game: %w", err)
		}

		log.Info("session closed")

		return game.Snapshot(), nil
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	log.Info("player removed", "status", game.Status)

	that.publish(ctx, game)

	return game.Snapshot(), nil
}

// releasePlayer clears the seat on the stored player record. The copy held by the game may be stale,
// and a record that already points at another room is left alone.
func (that *GameManager) releasePlayer(ctx context.Context, sessionID, playerID string) error {
	if playerID == entity.BotPlayerID {
		return nil
	}

	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}

	if player.GameID != sessionID {
		return nil
	}

	player.GameID = ""
	player.Mark = entity.MarkEmpty

	if err = that.playerService.Update(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

// leaveCurrentSession loads the player and takes them out of any room other than keep.
func (that *GameManager) leaveCurrentSession(ctx context.Context, playerID, keep string) (*entity.Player, error) {
	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if player.GameID == "" || player.GameID == keep {
		return player, nil
	}

	_, err = that.removePlayer(ctx, player.GameID, playerID, "switch")
	if err != nil && !errors.Is(err, apperror.ErrSessionNotFound) && !errors.Is(err, apperror.ErrPlayerNotInSession) {
		return nil, fmt.Errorf("failed to leave previous game: %w", err)
	}

	player.GameID = ""
	player.Mark = entity.MarkEmpty

	return player, nil
}

func (that *GameManager) save(ctx context.Context, game *entity.Game, player *entity.Player) error {
	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	if err := that.playerService.Update(ctx, player); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	return nil
}

func (that *GameManager) publish(ctx context.Context, game *entity.Game) {
	that.publishersMu.RLock()
	defer that.publishersMu.RUnlock()

	for _, publisher := range that.publishers {
		if err := publisher.Publish(ctx, game.Snapshot()); err != nil {
			that.logger.Error("failed to publish game state", "gameID", game.ID, "error", err)
		}
	}
}

func (that *GameManager) scheduleBotIfDue(game *entity.Game) {
	if !botToMove(game) {
		return
	}

	gameID := game.ID
	that.scheduler.Schedule(gameID, that.botDelay, func() {
		that.playBot(gameID)
	})
}

// playBot is the delayed bot task. The state is re-checked because the game may have moved on.
func (that *GameManager) playBot(gameID string) {
	log := that.logger.With("method", "playBot", "gameID", gameID)

	ctx, cancel := context.WithTimeout(context.Background(), botTaskTimeout)
	defer cancel()

	unlock := that.sessions.Lock(gameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		log.Debug("bot task dropped", "error", err)
		return
	}

	if !botToMove(game) {
		return
	}

	if _, err = that.botService.MakeTurn(game); err != nil {
		log.Error("bot failed to make turn", "error", err)
		return
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		log.Error("failed to save game after bot turn", "error", err)
		return
	}

	that.publish(ctx, game)
}

func botToMove(game *entity.Game) bool {
	if !game.IsWithBot() || !game.IsOngoing() {
		return false
	}

	player := game.PlayerByMark(game.Turn)

	return player != nil && player.IsBot()
}
