package mysql

import (
	"errors"
	"fmt"

	"storefront/internal/domain"

	"gorm.io/gorm"
)

// translate maps constraint violations to domain.ErrConflict. The connection
// must be opened with TranslateError enabled.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, domain.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s is referenced by other records: %w", what, domain.ErrConflict)
	}
	return err
}

func pageBounds(page, limit int) (offset, size int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return (page - 1) * limit, limit
}
