// Package services contains business logic for worknest-engine.
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/database"
)

// TxFunc runs fn atomically: every repository call made with the context
// passed to fn commits together or not at all.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// NewTxFunc returns a TxFunc backed by the request's database scope.
func NewTxFunc() TxFunc {
	return database.RunInTx
}

// callerID returns the authenticated user's id.
func callerID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := auth.GetUserUUIDFromContext(ctx)
	if !ok {
		return uuid.Nil, apperrors.Unauthorized("Authentication required")
	}
	return userID, nil
}
