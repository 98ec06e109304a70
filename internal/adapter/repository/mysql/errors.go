package mysql

import (
	"errors"

	"gorm.io/gorm"
)

// translate maps gorm's not-found onto the caller's domain sentinel.
func translate(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
