// Package cascade applies side-effect mutations to entities related to a
// workflow's primary subject, such as freeing a room when a tenant exits.
// Cascades run after a workflow's required steps succeed and are best
// effort: a failing cascade is logged by the engine, never fatal.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/stayware/stayflow/pkg/models"
)

var (
	// ErrNoTable indicates the entity type has no backing table to mutate.
	ErrNoTable = errors.New("entity type has no backing table")

	// ErrEmptyUpdate indicates an update cascade carried no data.
	ErrEmptyUpdate = errors.New("update cascade has no data")
)

// Applier performs one scoped mutation per cascade effect.
type Applier interface {
	Apply(ctx context.Context, effect models.CascadeEffect) error
}

// statement is a rendered SQL mutation with positional args.
type statement struct {
	query string
	args  []any
}

// buildStatement renders the mutation for an effect. Kept separate from the
// executing applier so the SQL shape is testable without a database. The
// action switch is exhaustive over the declared constants; values outside
// the enum can only arrive from decoded external data and are rejected.
func buildStatement(effect models.CascadeEffect) (statement, error) {
	table, ok := effect.EntityType.Table()
	if !ok {
		return statement{}, fmt.Errorf("%w: %s", ErrNoTable, effect.EntityType)
	}

	switch effect.Action {
	case models.CascadeUpdate:
		return buildUpdate(table, effect)
	case models.CascadeStatusChange:
		return buildStatusChange(table, effect)
	case models.CascadeDelete:
		return statement{
			query: fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND workspace_id = $2", table),
			args:  []any{effect.EntityID, effect.WorkspaceID},
		}, nil
	}

	return statement{}, fmt.Errorf("unknown cascade action %q", effect.Action)
}

func buildUpdate(table string, effect models.CascadeEffect) (statement, error) {
	if len(effect.Data) == 0 {
		return statement{}, ErrEmptyUpdate
	}

	// Sorted columns keep the rendered SQL deterministic.
	columns := make([]string, 0, len(effect.Data))
	for column := range effect.Data {
		columns = append(columns, column)
	}

	sort.Strings(columns)

	query := fmt.Sprintf("UPDATE %s SET ", table)
	args := make([]any, 0, len(columns)+2)

	for i, column := range columns {
		if i > 0 {
			query += ", "
		}

		args = append(args, effect.Data[column])
		query += fmt.Sprintf("%s = $%d", column, len(args))
	}

	query += fmt.Sprintf(", updated_at = NOW() WHERE id = $%d AND workspace_id = $%d", len(args)+1, len(args)+2)
	args = append(args, effect.EntityID, effect.WorkspaceID)

	return statement{query: query, args: args}, nil
}

func buildStatusChange(table string, effect models.CascadeEffect) (statement, error) {
	status, ok := effect.Data["status"]
	if !ok {
		return statement{}, fmt.Errorf("status_change cascade for %s has no status", effect.EntityType)
	}

	// Status changes always touch updated_at, even when the status value is
	// unchanged, so downstream sync can observe the write.
	return statement{
		query: fmt.Sprintf("UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2 AND workspace_id = $3", table),
		args:  []any{status, effect.EntityID, effect.WorkspaceID},
	}, nil
}
