package api

import "github.com/inourx99/Englishcompition/pkg/logger"

type serverConfig struct {
	passphrase   string
	defaultLimit int
	maxLimit     int
	log          logger.Logger
}

// Option configures a Server.
type Option func(*serverConfig)

// WithAdminPassphrase sets the shared secret for admin routes. Empty locks them.
func WithAdminPassphrase(passphrase string) Option {
	return func(c *serverConfig) {
		c.passphrase = passphrase
	}
}

// WithLeaderboardLimits sets the default and the maximum leaderboard size.
func WithLeaderboardLimits(defaultLimit, maxLimit int) Option {
	return func(c *serverConfig) {
		if defaultLimit > 0 {
			c.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			c.maxLimit = maxLimit
		}
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}
