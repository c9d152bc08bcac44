package repository

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// translate maps GORM failures onto the service error codes. The database is
// opened with TranslateError so unique violations surface as ErrDuplicatedKey.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.CodeNotFound, op, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.New(apperr.CodeConflict, op, "concurrent write to the same aggregate", err)
	default:
		return apperr.Wrap(apperr.CodeInternal, op, err)
	}
}

// staleOrMissing explains a versioned UPDATE that touched no rows.
func staleOrMissing(tx *gorm.DB, model any, kind string, id uuid.UUID) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("%s %s not found", kind, id)
	}
	return apperr.Conflict("%s %s was modified concurrently", kind, id)
}
