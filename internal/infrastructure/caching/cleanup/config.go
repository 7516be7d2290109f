package cleanup

import (
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/pkg/config"
)

// Config holds cleanup worker configuration, sourced from the central config package.
type Config struct {
	CleanupInterval  time.Duration
	VerboseReporting bool
	SessionTTL       time.Duration
	RenderCacheTTL   time.Duration
}

// NewConfig creates a new cleanup configuration by reading values
// from the already-initialized variables in the centralized /pkg/config package.
func NewConfig() *Config {
	return &Config{
		CleanupInterval:  config.CleanupInterval,
		VerboseReporting: config.CleanupVerboseReporter,
		SessionTTL:       config.SessionTTL,
		RenderCacheTTL:   config.RenderCacheTTL,
	}
}
