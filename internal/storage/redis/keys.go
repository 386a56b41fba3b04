package redis

import (
	"fmt"

	"github.com/cardroom/cardroom/internal/model"
)

// Key prefix for all session data
const keyPrefix = "cardroom"

// gameKey returns the Redis key for a Game record
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the SET of all game keys
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// playerKey returns the Redis key for a Player sub-record
func playerKey(gameID model.GameID, id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s:%s", keyPrefix, gameID, id)
}

// rosterIndexKey returns the Redis key for the SET of a game's player keys
func rosterIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:roster:%s", keyPrefix, gameID)
}

// identityKey returns the Redis key for an Identity record
func identityKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:identity:%s", keyPrefix, id)
}

// accountKey returns the Redis key for an Account record
func accountKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}
