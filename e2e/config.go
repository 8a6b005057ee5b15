package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerAddr string `envconfig:"SERVER_ADDR" default:"localhost:8080"`
	// E2E_DEBUG_JSON allows dumping full HTTP request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// Credentials of two seeded, connected users plus one isolated user
	UserA        string `envconfig:"E2E_USER_A" default:"alice"`
	UserB        string `envconfig:"E2E_USER_B" default:"bob"`
	UserOutsider string `envconfig:"E2E_USER_OUTSIDER" default:"dmitri"`
	Password     string `envconfig:"E2E_PASSWORD" default:"Correct-Horse-42!"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
