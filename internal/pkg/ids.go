package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const gameIDLength = 8

// GenerateGameID returns a short room code that is easy to share.
func GenerateGameID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:gameIDLength])
}

func GeneratePlayerID() string {
	return uuid.NewString()
}
