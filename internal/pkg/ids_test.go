package pkg

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGameID(t *testing.T) {
	seen := make(map[string]struct{})

	for range 100 {
		id := GenerateGameID()

		require.Len(t, id, gameIDLength)
		assert.Equal(t, id, strings.ToUpper(id))
		seen[id] = struct{}{}
	}

	assert.Len(t, seen, 100)
}

func TestGeneratePlayerID(t *testing.T) {
	_, err := uuid.Parse(GeneratePlayerID())

	require.NoError(t, err)
	assert.NotEqual(t, GeneratePlayerID(), GeneratePlayerID())
}
