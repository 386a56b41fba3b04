package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings per entity type. Guest identities expire; games and
	// their player sub-records share a TTL so a roster never outlives
	// its game.
	GuestIdentityTTL time.Duration
	GameTTL          time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		GuestIdentityTTL: 24 * time.Hour,
		GameTTL:          24 * time.Hour,
	}
}
