package cascade

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/stayware/stayflow/pkg/models"
)

// PostgresApplier executes cascade mutations against the shared database.
type PostgresApplier struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresApplier(db *sql.DB, logger *slog.Logger) *PostgresApplier {
	return &PostgresApplier{
		db:     db,
		logger: logger.With("module", "cascade_applier"),
	}
}

func (a *PostgresApplier) Apply(ctx context.Context, effect models.CascadeEffect) error {
	stmt, err := buildStatement(effect)
	if err != nil {
		// Malformed effects are skipped; cascades are auxiliary to the
		// workflow's primary mutation.
		a.logger.WarnContext(ctx, "skipping cascade effect",
			"entity_type", effect.EntityType,
			"entity_id", effect.EntityID,
			"action", effect.Action,
			"error", err,
		)

		return nil
	}

	res, err := a.db.ExecContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return fmt.Errorf("failed to apply %s cascade on %s %s: %w", effect.Action, effect.EntityType, effect.EntityID, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		a.logger.WarnContext(ctx, "cascade matched no rows",
			"entity_type", effect.EntityType,
			"entity_id", effect.EntityID,
			"action", effect.Action,
		)
	}

	return nil
}
