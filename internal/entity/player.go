package entity

const (
	BotPlayerID   = "bot"
	BotPlayerName = "Bot"
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Mark   Mark   `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

func NewBotPlayer(gameID string, mark Mark) *Player {
	return &Player{
		ID:     BotPlayerID,
		Name:   BotPlayerName,
		Mark:   mark,
		GameID: gameID,
	}
}

func (that *Player) IsBot() bool {
	return that.ID == BotPlayerID
}

func (that *Player) Clone() *Player {
	if that == nil {
		return nil
	}

	clone := *that

	return &clone
}
