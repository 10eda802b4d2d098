package service

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// storeError maps a repository failure: missing rows become NotFound, anything
// else is logged and hidden behind the generic internal error.
func storeError(logger *zap.Logger, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "")
	}
	logger.Error(op, zap.Error(err))
	return appErrors.Internal(err)
}
