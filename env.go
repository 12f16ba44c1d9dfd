package sigil

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig holds raw env values before post-parse validation.
type envConfig struct {
	Secret      string        `env:"SIGIL_SECRET"`
	BasePath    string        `env:"SIGIL_BASE_PATH"`
	TokenIssuer string        `env:"SIGIL_TOKEN_ISSUER"`
	TokenTTL    time.Duration `env:"SIGIL_TOKEN_TTL"`
	EventBuffer int           `env:"SIGIL_EVENT_BUFFER"`
}

// ConfigFromEnv reads the scalar parts of a Config from the process
// environment. The caller still supplies the Store and HTTP ports
// before passing the result to New.
func ConfigFromEnv() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse sigil env: %w", err)
	}

	secret := strings.TrimSpace(raw.Secret)
	if secret == "" {
		return Config{}, fmt.Errorf("SIGIL_SECRET is required")
	}

	config := Config{
		Secret:      secret,
		BasePath:    strings.TrimSpace(raw.BasePath),
		EventBuffer: raw.EventBuffer,
	}

	if raw.TokenTTL > 0 || strings.TrimSpace(raw.TokenIssuer) != "" {
		tokenConfig := DefaultTokenConfig(secret)
		if raw.TokenTTL > 0 {
			tokenConfig.MaxAge = raw.TokenTTL
		}
		if issuer := strings.TrimSpace(raw.TokenIssuer); issuer != "" {
			tokenConfig.Issuer = issuer
		}
		config.TokenConfig = &tokenConfig
	}

	return config, nil
}
