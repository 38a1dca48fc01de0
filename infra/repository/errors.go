package repository

import (
	"errors"

	"github.com/amirasaad/finanze/pkg/domain"
	"gorm.io/gorm"
)

// mapError translates gorm errors into domain errors. resource names the
// entity in the not-found message.
func mapError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict("%s già esistente", resource)
	default:
		return err
	}
}

// affected returns a not-found error when a write touched no rows.
func affected(res *gorm.DB, resource string) error {
	if res.Error != nil {
		return mapError(res.Error, resource)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(resource)
	}
	return nil
}
