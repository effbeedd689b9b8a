package model

import (
	"time"
)

type Note struct {
	Id        string    `gorm:"type:varchar(64);primaryKey"`
	Title     string    `gorm:"type:text;not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;index;autoUpdateTime:false"`
	IsPinned  bool      `gorm:"not null;default:false"`
	Images    []Image   `gorm:"foreignKey:NoteId;constraint:OnDelete:CASCADE"`
}

func (Note) TableName() string {
	return "notes"
}
