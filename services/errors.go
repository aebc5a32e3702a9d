package services

import (
	"time"

	"capstone-tracker/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Clock returns the current time. Tests replace it to move across deadlines.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// notFound turns a missing row into NotFoundError and wraps anything else.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource)
	}
	return errors.Wrapf(err, "load %s", resource)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
