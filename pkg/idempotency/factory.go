package idempotency

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// NewStore selects a backing store from the URL scheme: redis:// uses Redis
// and anything else falls back to the shared Postgres database. An empty
// URL yields the in-memory store.
func NewStore(url string, db *sql.DB, logger *slog.Logger) (Store, error) {
	switch {
	case url == "":
		return NewMemoryStore(), nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return NewRedisStoreFromURL(url, logger)
	case db != nil:
		return NewPostgresStore(db, logger), nil
	default:
		return nil, fmt.Errorf("no idempotency backing available for %q", url)
	}
}
