package redis

import (
	"fmt"

	"github.com/mcoot/wallwars-go/internal/model"
)

// Key prefix for all stored data
const keyPrefix = "wallwars"

// playerKey returns the Redis key for a Player document
func playerKey(idToken string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, idToken)
}

// playerRatingIndexKey returns the sorted set of idTokens scored by rating
func playerRatingIndexKey() string {
	return keyPrefix + ":idx:player_rating"
}

// gameKey returns the Redis key for a full game document
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gameSummaryKey returns the Redis key for a game's summary side record
func gameSummaryKey(id model.GameID) string {
	return fmt.Sprintf("%s:game_summary:%s", keyPrefix, id)
}

// gameMovesIndexKey returns the sorted set of game ids scored by recorded move count
func gameMovesIndexKey() string {
	return keyPrefix + ":idx:game_moves"
}

// gameStartIndexKey returns the sorted set of game ids scored by start date in unix milliseconds
func gameStartIndexKey() string {
	return keyPrefix + ":idx:game_start"
}
