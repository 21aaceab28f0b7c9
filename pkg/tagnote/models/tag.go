package models

import (
	"time"
)

// Tag represents a label a user can attach to notes. Tag names are
// unique per owner, enforced by the composite index so concurrent
// find-or-create attempts cannot produce duplicates.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_tags_owner_name" json:"owner_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_tags_owner_name" json:"name"`

	// Relationships
	Owner User   `gorm:"foreignKey:OwnerID" json:"-"`
	Notes []Note `gorm:"many2many:note_tags;" json:"notes,omitempty"`
}
