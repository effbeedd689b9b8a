package relational

import (
	"simple-notes-be/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the notes and images tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Note{}, &model.Image{})
}
