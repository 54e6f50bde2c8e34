package entity

type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol Mark   `json:"symbol"`
}

// GameState is the read-only snapshot handed to transports and observers.
type GameState struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Status             string       `json:"status"`
	Board              Board        `json:"board"`
	Players            []PlayerView `json:"players"`
	CurrentPlayer      Mark         `json:"currentPlayer"`
	Winner             string       `json:"winner"`
	WinningLine        []Line       `json:"winningLine"`
	WinningLinesX      []Line       `json:"winningLinesX"`
	WinningLinesO      []Line       `json:"winningLinesO"`
	ScoreX             int          `json:"scoreX"`
	ScoreO             int          `json:"scoreO"`
	IsGameOver         bool         `json:"isGameOver"`
	ReadyPlayers       []string     `json:"readyPlayers"`
	IsBotGame          bool         `json:"isBotGame"`
	DisconnectedPlayer *PlayerView  `json:"disconnectedPlayer,omitempty"`
}

// RoomInfo is one entry of the room directory.
type RoomInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Creator     string `json:"creator"`
	Players     int    `json:"players"`
	HasPassword bool   `json:"hasPassword"`
	IsBotGame   bool   `json:"isBotGame"`
	Status      string `json:"status"`
}

func (that *Game) Snapshot() *GameState {
	state := &GameState{
		ID:            that.ID,
		Name:          that.Name,
		Status:        that.Status,
		Board:         that.Board,
		Players:       make([]PlayerView, 0, len(that.Players)),
		CurrentPlayer: that.Turn,
		Winner:        that.Winner,
		WinningLine:   nonNilLines(that.LastLines),
		WinningLinesX: nonNilLines(that.ClaimedLines(MarkX)),
		WinningLinesO: nonNilLines(that.ClaimedLines(MarkO)),
		ScoreX:        that.Score(MarkX),
		ScoreO:        that.Score(MarkO),
		IsGameOver:    that.IsFinished(),
		ReadyPlayers:  append(make([]string, 0, len(that.ReadyPlayers)), that.ReadyPlayers...),
		IsBotGame:     that.IsWithBot(),
	}

	for _, player := range that.Players {
		state.Players = append(state.Players, viewOf(player))
	}

	if that.Disconnected != nil {
		view := viewOf(that.Disconnected)
		state.DisconnectedPlayer = &view
	}

	return state
}

func viewOf(player *Player) PlayerView {
	return PlayerView{ID: player.ID, Name: player.Name, Symbol: player.Mark}
}

func nonNilLines(lines []Line) []Line {
	if lines == nil {
		return []Line{}
	}

	return cloneLines(lines)
}
