package session

import (
	"fmt"

	"github.com/automenta/mcr/internal/config"
)

// NewStoreFromConfig builds the session store selected by configuration.
func NewStoreFromConfig(cfg *config.Config) (Store, error) {
	switch cfg.SessionStore.Type {
	case "memory", "":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.SessionStore.Directory)
	default:
		return nil, fmt.Errorf("unknown session store type: %s", cfg.SessionStore.Type)
	}
}
