package models

import (
	"time"
)

// MaxContentLength is the upper bound on note content, matching the
// column size.
const MaxContentLength = 10000

// Note represents a single note owned by a user. Tags are attached
// through the note_tags join table; queries that need them must ask
// for them explicitly (Preload), there is no implicit loading.
type Note struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `gorm:"size:10000;not null" json:"content"`

	// Relationships
	Owner User  `gorm:"foreignKey:OwnerID" json:"-"`
	Tags  []Tag `gorm:"many2many:note_tags;" json:"tags,omitempty"`
}
