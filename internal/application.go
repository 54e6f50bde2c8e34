package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/xo3d-backend/internal/config"
	"github.com/rocketscienceinc/xo3d-backend/internal/repository"
	"github.com/rocketscienceinc/xo3d-backend/internal/repository/storage"
	"github.com/rocketscienceinc/xo3d-backend/internal/service"
	"github.com/rocketscienceinc/xo3d-backend/internal/transport/redis"
	"github.com/rocketscienceinc/xo3d-backend/internal/usecase"
	"github.com/rocketscienceinc/xo3d-backend/transport/rest"
	"github.com/rocketscienceinc/xo3d-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type repositories struct {
	players repository.PlayerRepository
	games   repository.GameRepository
	redis   *storage.RedisStorage
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	repos, err := openRepositories(ctx, conf)
	if err != nil {
		return err
	}

	if repos.redis != nil {
		defer func() {
			if err = repos.redis.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()
	}

	hub := websocket.NewHub(logger)

	gameManager := usecase.NewGameManager(
		logger,
		service.NewPlayerService(repos.players),
		service.NewGameService(repos.games),
		service.NewBotService(),
		usecase.NewTimerScheduler(),
		conf.Bot.MoveDelay,
	)
	switch {
	case conf.Redis.PublishEvents && repos.redis != nil:
		// snapshots go out through redis and come back to the hub, so sockets on every instance see them
		publisher := redis.NewPublisher(logger, repos.redis.Connection)
		gameManager.AddPublisher(publisher)

		go func() {
			if relayErr := publisher.Relay(ctx, hub); relayErr != nil {
				log.Error("game state relay stopped", "error", relayErr)
				cancel()
			}
		}()
	case conf.Redis.PublishEvents:
		log.Warn("redis event publishing needs redis storage, skipping")
		gameManager.AddPublisher(hub)
	default:
		gameManager.AddPublisher(hub)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, gameManager)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager, hub)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func openRepositories(ctx context.Context, conf *config.Config) (*repositories, error) {
	if conf.Storage == config.StorageMemory {
		return &repositories{
			players: repository.NewMemoryPlayerRepository(),
			games:   repository.NewMemoryGameRepository(),
		}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return &repositories{
		players: repository.NewPlayerRepository(redisStorage.Connection),
		games:   repository.NewGameRepository(redisStorage.Connection),
		redis:   redisStorage,
	}, nil
}
