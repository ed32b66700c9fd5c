package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/themescore-backend/internal/domain"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
)

// AutoMigrateAll creates or extends every table the scorer reads or writes.
// It never drops columns, so it is safe against the upstream-owned tables.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.AllModels()...); err != nil {
		return apperr.Persistence("automigrate", err)
	}
	return nil
}
