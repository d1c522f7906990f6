package repository

import (
	"errors"

	"gorm.io/gorm"
)

// translate maps gorm's not-found onto the domain sentinel of the entity.
func translate(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
