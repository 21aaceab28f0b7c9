package notes

import (
	"errors"
	"strings"
	"time"

	"github.com/bu6030/tag-note/pkg/tagnote/models"
	"github.com/bu6030/tag-note/pkg/tagnote/tags"
	"gorm.io/gorm"
)

const (
	// listAllCap bounds unpaginated listings.
	listAllCap = 1000
	// maxPageSize is the hard ceiling on requested page sizes.
	maxPageSize = 100
	// defaultPageSize is used when the requested size is missing or
	// non-positive.
	defaultPageSize = 5
)

// ErrNotFound is returned when a note does not exist or belongs to a
// different owner. Callers cannot tell the two apart, so existence
// never leaks across owners.
var ErrNotFound = errors.New("note not found")

// Page is one slice of an owner's notes plus the bookkeeping a client
// needs to render a pager.
type Page struct {
	Content       []models.Note
	CurrentPage   int
	PageSize      int
	TotalElements int64
	TotalPages    int
	HasNext       bool
	HasPrevious   bool
}

// Service orchestrates note CRUD and queries. Every method takes the
// owner id explicitly; there is no ambient current-user state.
type Service struct {
	db       *gorm.DB
	pageSize int
}

// NewService creates a note service with the default page size.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, pageSize: defaultPageSize}
}

// SetDefaultPageSize overrides the fallback page size. Non-positive
// values are ignored.
func (s *Service) SetDefaultPageSize(n int) {
	if n > 0 {
		s.pageSize = n
	}
}

// Create builds a note for the owner, resolving rawTags into persisted
// tags. The note and its tag associations commit as one unit.
func (s *Service) Create(ownerID uint, title, content string, rawTags []string) (*models.Note, error) {
	note := models.Note{
		OwnerID: ownerID,
		Title:   title,
		Content: content,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := tags.Resolve(tx, ownerID, rawTags)
		if err != nil {
			return err
		}
		if err := tx.Omit("Tags").Create(&note).Error; err != nil {
			return err
		}
		if err := tx.Model(&note).Association("Tags").Replace(resolved); err != nil {
			return err
		}
		note.Tags = resolved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Get returns the owner's note with its tags loaded, or ErrNotFound.
func (s *Service) Get(ownerID, id uint) (*models.Note, error) {
	var note models.Note
	err := s.db.Preload("Tags").Where("id = ? AND owner_id = ?", id, ownerID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Update replaces the note's title, content and entire tag set. Tags
// named in rawTags are resolved fresh; associations not named are
// dropped (the tags themselves survive). Returns ErrNotFound for a
// missing or foreign-owned id.
func (s *Service) Update(ownerID, id uint, title, content string, rawTags []string) (*models.Note, error) {
	var note models.Note
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&note).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		note.Title = title
		note.Content = content
		if err := tx.Omit("Tags").Save(&note).Error; err != nil {
			return err
		}

		resolved, err := tags.Resolve(tx, ownerID, rawTags)
		if err != nil {
			return err
		}
		if err := tx.Model(&note).Association("Tags").Replace(resolved); err != nil {
			return err
		}
		note.Tags = resolved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete removes the owner's note and its tag associations. Missing or
// foreign-owned ids are a no-op, so repeated deletes are harmless.
func (s *Service) Delete(ownerID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var note models.Note
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&note).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Model(&note).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&note).Error
	})
}

// ListAll returns the owner's notes newest first, capped at 1000.
func (s *Service) ListAll(ownerID uint) ([]models.Note, error) {
	var notes []models.Note
	err := s.db.Preload("Tags").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(listAllCap).
		Find(&notes).Error
	return notes, err
}

// ListPage returns one page of the owner's notes newest first.
func (s *Service) ListPage(ownerID uint, page, size int) (*Page, error) {
	return s.paginate(func() *gorm.DB {
		return s.db.Model(&models.Note{}).Where("owner_id = ?", ownerID)
	}, page, size)
}

// SearchByTitle returns the owner's notes whose title contains q,
// case-insensitively, newest first.
func (s *Service) SearchByTitle(ownerID uint, q string) ([]models.Note, error) {
	var notes []models.Note
	err := s.titleQuery(ownerID, q).
		Preload("Tags").
		Order("created_at DESC, id DESC").
		Limit(listAllCap).
		Find(&notes).Error
	return notes, err
}

// SearchByTitlePage is the paginated form of SearchByTitle.
func (s *Service) SearchByTitlePage(ownerID uint, q string, page, size int) (*Page, error) {
	return s.paginate(func() *gorm.DB {
		return s.titleQuery(ownerID, q)
	}, page, size)
}

// SearchByTags returns the owner's notes carrying at least one of the
// named tags (OR semantics), newest first.
func (s *Service) SearchByTags(ownerID uint, names []string) ([]models.Note, error) {
	if len(names) == 0 {
		return []models.Note{}, nil
	}
	var notes []models.Note
	err := s.tagQuery(ownerID, names).
		Select("DISTINCT notes.*").
		Preload("Tags").
		Order("notes.created_at DESC, notes.id DESC").
		Limit(listAllCap).
		Find(&notes).Error
	return notes, err
}

// SearchByTagsPage is the paginated form of SearchByTags.
func (s *Service) SearchByTagsPage(ownerID uint, names []string, page, size int) (*Page, error) {
	return s.paginate(func() *gorm.DB {
		return s.tagQuery(ownerID, names).Select("DISTINCT notes.*")
	}, page, size)
}

// DistinctDates returns the distinct calendar days (start of day, UTC)
// on which the owner created notes, newest first.
func (s *Service) DistinctDates(ownerID uint) ([]time.Time, error) {
	var stamps []time.Time
	err := s.db.Model(&models.Note{}).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Pluck("created_at", &stamps).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]struct{})
	dates := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		ts = ts.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		dates = append(dates, day)
	}
	return dates, nil
}

// Counts returns the owner's total note and tag counts.
func (s *Service) Counts(ownerID uint) (noteCount, tagCount int64, err error) {
	if err = s.db.Model(&models.Note{}).Where("owner_id = ?", ownerID).Count(&noteCount).Error; err != nil {
		return
	}
	err = s.db.Model(&models.Tag{}).Where("owner_id = ?", ownerID).Count(&tagCount).Error
	return
}

// FirstNoteDate returns the creation time of the owner's oldest note,
// or nil when the owner has no notes.
func (s *Service) FirstNoteDate(ownerID uint) (*time.Time, error) {
	var note models.Note
	err := s.db.Where("owner_id = ?", ownerID).Order("created_at ASC, id ASC").First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := note.CreatedAt
	return &t, nil
}

func (s *Service) titleQuery(ownerID uint, q string) *gorm.DB {
	return s.db.Model(&models.Note{}).
		Where("owner_id = ? AND LOWER(title) LIKE ?", ownerID, "%"+strings.ToLower(q)+"%")
}

func (s *Service) tagQuery(ownerID uint, names []string) *gorm.DB {
	return s.db.Model(&models.Note{}).
		Joins("JOIN note_tags ON note_tags.note_id = notes.id").
		Joins("JOIN tags ON tags.id = note_tags.tag_id").
		Where("notes.owner_id = ? AND tags.name IN ?", ownerID, names)
}

// paginate runs the count and page queries against fresh copies of the
// base query. Out-of-range paging parameters are normalized, never
// rejected: negative pages become 0, non-positive sizes fall back to
// the default and oversized requests are capped.
func (s *Service) paginate(newQuery func() *gorm.DB, page, size int) (*Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = s.pageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	var total int64
	if err := newQuery().Distinct("notes.id").Count(&total).Error; err != nil {
		return nil, err
	}

	var notes []models.Note
	err := newQuery().
		Preload("Tags").
		Order("notes.created_at DESC, notes.id DESC").
		Limit(size).
		Offset(page * size).
		Find(&notes).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &Page{
		Content:       notes,
		CurrentPage:   page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    totalPages,
		HasNext:       page+1 < totalPages,
		HasPrevious:   page > 0,
	}, nil
}
