package tags

import (
	"errors"

	"github.com/bu6030/tag-note/pkg/tagnote/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a tag does not exist or belongs to a
// different owner. The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("tag not found")

// ErrConflict is returned when creating a tag whose (owner, name) pair
// already exists.
var ErrConflict = errors.New("tag already exists")

// NoteDeleter deletes a single note on behalf of an owner. The notes
// service satisfies this; the indirection keeps the cascade logic here
// without an import cycle between the two packages.
type NoteDeleter interface {
	Delete(ownerID, noteID uint) error
}

// Service owns tag listing, lookup, creation and deletion for a single
// owner per call.
type Service struct {
	db    *gorm.DB
	notes NoteDeleter
}

// NewService creates a tag service. notes is used by Delete to cascade
// into note deletion.
func NewService(db *gorm.DB, notes NoteDeleter) *Service {
	return &Service{db: db, notes: notes}
}

// List returns all tags belonging to the owner.
func (s *Service) List(ownerID uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Where("owner_id = ?", ownerID).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Get returns the tag with the given id if the owner holds it.
func (s *Service) Get(ownerID, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Create adds a new tag for the owner. Returns ErrConflict when the
// owner already has a tag with that name, whether found up front or
// lost to a concurrent writer at the unique index.
func (s *Service) Create(ownerID uint, name string) (*models.Tag, error) {
	var existing models.Tag
	if err := s.db.Where("owner_id = ? AND name = ?", ownerID, name).First(&existing).Error; err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag := models.Tag{OwnerID: ownerID, Name: name}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, ErrConflict
	}
	return &tag, nil
}

// Delete removes the tag AND every note currently carrying it:
// deleting the tag "work" deletes all notes tagged "work", not just
// the association rows. Deleting an id that is missing or owned by
// someone else is a no-op.
func (s *Service) Delete(ownerID, id uint) error {
	var tag models.Tag
	if err := s.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	var notes []models.Note
	if err := s.db.Model(&tag).Association("Notes").Find(&notes); err != nil {
		return err
	}
	for _, note := range notes {
		if err := s.notes.Delete(ownerID, note.ID); err != nil {
			return err
		}
	}

	return s.db.Delete(&tag).Error
}
