// Package repositories implements PostgreSQL data access for worknest-engine.
// Every repository runs its statements on the database scope carried by the
// context, so calls made inside database.RunInTx join that transaction.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/database"
)

func querier(ctx context.Context) (database.Querier, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}
	return scope.Q(), nil
}

// translate maps driver errors to application error kinds.
// what names the entity for the caller-facing message, e.g. "Task".
func translate(err error, what string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NotFound("%s not found", what)
	case database.IsUniqueViolation(err):
		return apperrors.Conflict("%s already exists", what)
	default:
		return err
	}
}
