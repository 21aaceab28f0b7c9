package tags

import (
	"errors"
	"strings"

	"github.com/bu6030/tag-note/pkg/tagnote/models"
	"gorm.io/gorm"
)

// isTagSeparator reports whether r separates tag names. Both the ASCII
// comma and the ideographic comma (、) are accepted.
func isTagSeparator(r rune) bool {
	return r == ',' || r == '、'
}

// SplitTagNames flattens raw tag input into distinct, trimmed names.
// Each raw string may itself contain embedded separators; empty
// fragments are dropped and repeated names collapse to one, keeping
// first-seen order.
func SplitTagNames(raw []string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, chunk := range raw {
		for _, fragment := range strings.FieldsFunc(chunk, isTagSeparator) {
			name := strings.TrimSpace(fragment)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// Resolve maps raw tag input to persisted tags for the owner, creating
// any that do not exist yet. Callers running a transaction pass their
// tx so tag creation commits or rolls back with the rest of the
// operation.
func Resolve(db *gorm.DB, ownerID uint, raw []string) ([]models.Tag, error) {
	names := SplitTagNames(raw)
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag, err := findOrCreate(db, ownerID, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func findOrCreate(db *gorm.DB, ownerID uint, name string) (models.Tag, error) {
	var tag models.Tag
	err := db.Where("owner_id = ? AND name = ?", ownerID, name).First(&tag).Error
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tag, err
	}

	tag = models.Tag{OwnerID: ownerID, Name: name}
	if createErr := db.Create(&tag).Error; createErr != nil {
		// A concurrent request may have created the same (owner, name)
		// pair first; the unique index rejected ours, so use theirs.
		if fetchErr := db.Where("owner_id = ? AND name = ?", ownerID, name).First(&tag).Error; fetchErr != nil {
			return tag, createErr
		}
	}
	return tag, nil
}
