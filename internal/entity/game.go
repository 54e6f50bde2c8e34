package entity

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rocketscienceinc/xo3d-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX = "X"
	PlayerO = "O"

	WinnerDraw       = "draw"
	WinnerDisconnect = "disconnect"

	EmptyCell = ""
)

const (
	PrivateType = "private"
	WithBotType = "bot"
)

// MaxPlayers is the number of seats in every room.
const MaxPlayers = 2

var ErrUnknownGameStatus = errors.New("unknown game status")

// RoomOptions describes a room to be created.
type RoomOptions struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
	WithBot  bool   `json:"with_bot,omitempty"`
}

// Game is the aggregate root of one session. It is owned by the game manager and
// only ever handed out as a GameState snapshot.
type Game struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Creator      string    `json:"creator"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Type         string    `json:"type"`
	Board        Board     `json:"board"`
	Players      []*Player `json:"players"`
	Turn         Mark      `json:"player_turn"`
	Status       string    `json:"status"`
	Winner       string    `json:"winner"`
	ScoreX       int       `json:"score_x"`
	ScoreO       int       `json:"score_o"`
	LinesX       []Line    `json:"lines_x"`
	LinesO       []Line    `json:"lines_o"`
	LastLines    []Line    `json:"last_lines"`
	ReadyPlayers []string  `json:"ready_players"`
	Disconnected *Player   `json:"disconnected,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewGame(id string, creator *Player, opts RoomOptions) *Game {
	gameType := PrivateType
	if opts.WithBot {
		gameType = WithBotType
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = id
	}

	return &Game{
		ID:        id,
		Name:      name,
		Creator:   creator.Name,
		Type:      gameType,
		Turn:      MarkX,
		Status:    StatusWaiting,
		CreatedAt: time.Now().UTC(),
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

func (that *Game) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Game) EndedByDisconnect() bool {
	return that.IsFinished() && that.Winner == WinnerDisconnect
}

// GetRandomMarks returns the human's and the bot's mark.
func (that *Game) GetRandomMarks() (Mark, Mark) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return MarkX, MarkO
	}
	return MarkO, MarkX
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Game) PlayerByMark(mark Mark) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

func (that *Game) HasPlayer(id string) bool {
	return that.PlayerByID(id) != nil
}

func (that *Game) HumanPlayers() []*Player {
	humans := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		if !player.IsBot() {
			humans = append(humans, player)
		}
	}

	return humans
}

// FreeMark is the mark a newly seated player receives.
func (that *Game) FreeMark() Mark {
	if len(that.Players) == 0 {
		return MarkX
	}

	return that.Players[0].Mark.Opponent()
}

func (that *Game) NameTaken(name string) bool {
	for _, player := range that.Players {
		if strings.EqualFold(player.Name, name) {
			return true
		}
	}

	return false
}

func (that *Game) Score(mark Mark) int {
	switch mark {
	case MarkX:
		return that.ScoreX
	case MarkO:
		return that.ScoreO
	default:
		return 0
	}
}

func (that *Game) ClaimedLines(mark Mark) []Line {
	switch mark {
	case MarkX:
		return that.LinesX
	case MarkO:
		return that.LinesO
	default:
		return nil
	}
}

// IsClaimed reports whether the line was already credited to either symbol.
func (that *Game) IsClaimed(line Line) bool {
	key := line.Key()
	for _, claimed := range [][]Line{that.ClaimedLines(MarkX), that.ClaimedLines(MarkO)} {
		for _, l := range claimed {
			if l.Key() == key {
				return true
			}
		}
	}

	return false
}

// Claim credits line to mark once. It returns false when the line was already claimed.
func (that *Game) Claim(mark Mark, line Line) bool {
	if !mark.IsPlayable() || that.IsClaimed(line) {
		return false
	}

	switch mark {
	case MarkX:
		that.ScoreX++
		that.LinesX = append(that.LinesX, line)
	case MarkO:
		that.ScoreO++
		that.LinesO = append(that.LinesO, line)
	}

	return true
}

// DecideByScore finishes the game: the strictly higher score wins, equal scores draw.
func (that *Game) DecideByScore() {
	x, o := that.Score(MarkX), that.Score(MarkO)

	switch {
	case x > o:
		that.Winner = PlayerX
	case o > x:
		that.Winner = PlayerO
	default:
		that.Winner = WinnerDraw
	}

	that.Status = StatusFinished
	that.Turn = MarkEmpty
}

// ResetRound clears the board and scores and starts a new round with X to move.
func (that *Game) ResetRound() {
	that.Board = Board{}
	that.ScoreX = 0
	that.ScoreO = 0
	that.LinesX = nil
	that.LinesO = nil
	that.LastLines = nil
	that.ReadyPlayers = nil
	that.Winner = ""
	that.Disconnected = nil
	that.Turn = MarkX
	that.Status = StatusOngoing
}

func (that *Game) IsReady(playerID string) bool {
	for _, id := range that.ReadyPlayers {
		if id == playerID {
			return true
		}
	}

	return false
}

func (that *Game) SetPassword(password string) error {
	if password == "" {
		that.PasswordHash = ""
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash room password: %w", err)
	}

	that.PasswordHash = string(hash)

	return nil
}

func (that *Game) HasPassword() bool {
	return that.PasswordHash != ""
}

func (that *Game) CheckPassword(password string) error {
	if !that.HasPassword() {
		return nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(that.PasswordHash), []byte(password)); err != nil {
		return apperror.ErrWrongPassword
	}

	return nil
}

// Clone returns a deep copy that shares no memory with the original.
func (that *Game) Clone() *Game {
	clone := *that

	clone.Players = make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		clone.Players = append(clone.Players, player.Clone())
	}

	clone.LinesX = cloneLines(that.LinesX)
	clone.LinesO = cloneLines(that.LinesO)
	clone.LastLines = cloneLines(that.LastLines)
	if that.ReadyPlayers != nil {
		clone.ReadyPlayers = append(make([]string, 0, len(that.ReadyPlayers)), that.ReadyPlayers...)
	}
	clone.Disconnected = that.Disconnected.Clone()

	return &clone
}

func (that *Game) RoomInfo() RoomInfo {
	return RoomInfo{
		ID:          that.ID,
		Name:        that.Name,
		Creator:     that.Creator,
		Players:     len(that.Players),
		HasPassword: that.HasPassword(),
		IsBotGame:   that.IsWithBot(),
		Status:      that.Status,
	}
}
