package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/pkg/apperr"
)

// dbError maps a row store error: a missing row becomes NOT_FOUND with the
// given subject, anything else an upstream failure.
func dbError(err error, subject string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(subject + " not found")
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Upstream("database", err)
}

func storageError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Upstream("storage", err)
}
