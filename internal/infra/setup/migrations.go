package setup

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// MigrateDB applies the schema for all persisted models.
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Sequence{},
		&domain.Track{},
		&domain.Clip{},
		&domain.Cursor{},
		&domain.Comment{},
	)
	if err != nil {
		return fmt.Errorf("setup: auto migrate: %w", err)
	}
	return nil
}
