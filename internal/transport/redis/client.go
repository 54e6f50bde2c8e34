package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/xo3d-backend/internal/entity"
)

// StateChannel is the pub/sub channel carrying snapshots of one game.
func StateChannel(gameID string) string {
	return "game:" + gameID + ":state"
}

// Publisher mirrors every game snapshot to redis pub/sub, where every instance can read it back.
type Publisher struct {
	logger *slog.Logger
	client *redis.Client
}

func NewPublisher(logger *slog.Logger, client *redis.Client) *Publisher {
	return &Publisher{
		logger: logger.With("component", "redisPublisher"),
		client: client,
	}
}

func (that *Publisher) Publish(ctx context.Context, state *entity.GameState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	if err = that.client.Publish(ctx, StateChannel(state.ID), stateJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game state: %w", err)
	}

	return nil
}

// StateSink receives snapshots read back from redis.
type StateSink interface {
	Publish(ctx context.Context, state *entity.GameState) error
}

// Relay feeds snapshots published by every instance into sink until ctx is done.
func (that *Publisher) Relay(ctx context.Context, sink StateSink) error {
	sub, err := that.subscribe(ctx)
	if err != nil {
		return err
	}

	that.forward(ctx, sub, sink)

	return nil
}

// subscribe listens on the state channel of every game and waits for redis to confirm it.
func (that *Publisher) subscribe(ctx context.Context) (*redis.PubSub, error) {
	sub := that.client.PSubscribe(ctx, StateChannel("*"))

	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to game states: %w", err)
	}

	return sub, nil
}

func (that *Publisher) forward(ctx context.Context, sub *redis.PubSub, sink StateSink) {
	defer sub.Close()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var state entity.GameState
			if err := json.Unmarshal([]byte(msg.Payload), &state); err != nil {
				that.logger.Warn("dropping malformed game state", "channel", msg.Channel, "error", err)
				continue
			}

			if err := sink.Publish(ctx, &state); err != nil {
				that.logger.Warn("failed to relay game state", "gameID", state.ID, "error", err)
			}
		}
	}
}
