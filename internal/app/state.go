package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"ciboway/internal/config"
	"ciboway/internal/session"
	"ciboway/internal/storage"
)

// NewStateStore builds the session state backend selected by the
// configuration. The returned closer releases backend connections and is
// never nil.
func NewStateStore(ctx context.Context, cfg *config.Config, db *sql.DB) (session.StateStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("Session state stored in Redis (ttl %s)", cfg.SessionTTL)
		return session.NewRedisStore(client, cfg.SessionTTL), client.Close, nil
	case config.SessionStoreFile:
		store, err := storage.NewFileStore(cfg.SessionDir)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("Session state stored in %s", cfg.SessionDir)
		return store, noop, nil
	case config.SessionStoreSQLite, "":
		return session.NewRepository(db), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}
