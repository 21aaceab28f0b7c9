package tags

import (
	"testing"

	"github.com/bu6030/tag-note/pkg/tagnote/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupResolverDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createOwner(t *testing.T, db *gorm.DB, email string) uint {
	user := models.User{Email: email, PasswordHash: "hash", Name: "Test"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestSplitTagNames(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"ascii comma", []string{"a,b,c"}, []string{"a", "b", "c"}},
		{"ideographic comma", []string{"a、b,c"}, []string{"a", "b", "c"}},
		{"whitespace trimmed", []string{" foo ,  bar"}, []string{"foo", "bar"}},
		{"empty fragments dropped", []string{" , ,x "}, []string{"x"}},
		{"duplicates collapse", []string{"foo, foo,bar"}, []string{"foo", "bar"}},
		{"multiple raw strings", []string{"a,b", "b、c"}, []string{"a", "b", "c"}},
		{"all empty", []string{"", " ", ",、,"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTagNames(tt.raw))
		})
	}
}

func TestResolveCreatesMissingTags(t *testing.T) {
	db := setupResolverDB(t)
	owner := createOwner(t, db, "test@example.com")

	resolved, err := Resolve(db, owner, []string{"foo, foo,bar"})
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	var count int64
	db.Model(&models.Tag{}).Where("owner_id = ?", owner).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestResolveReusesExistingTags(t *testing.T) {
	db := setupResolverDB(t)
	owner := createOwner(t, db, "test@example.com")

	first, err := Resolve(db, owner, []string{"foo"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := Resolve(db, owner, []string{"foo"})
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, first[0].ID, second[0].ID, "same name must resolve to the same tag")

	var count int64
	db.Model(&models.Tag{}).Where("owner_id = ?", owner).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResolveScopedToOwner(t *testing.T) {
	db := setupResolverDB(t)
	alice := createOwner(t, db, "alice@example.com")
	bob := createOwner(t, db, "bob@example.com")

	aliceTags, err := Resolve(db, alice, []string{"work"})
	require.NoError(t, err)
	bobTags, err := Resolve(db, bob, []string{"work"})
	require.NoError(t, err)

	assert.NotEqual(t, aliceTags[0].ID, bobTags[0].ID, "owners get separate tags for the same name")
	assert.Equal(t, alice, aliceTags[0].OwnerID)
	assert.Equal(t, bob, bobTags[0].OwnerID)
}

func TestResolveRecoversFromCreateConflict(t *testing.T) {
	db := setupResolverDB(t)
	owner := createOwner(t, db, "test@example.com")

	// Pre-create the row so findOrCreate's create path would conflict
	// if it skipped the lookup; resolving must surface the existing tag
	// either way.
	existing := models.Tag{OwnerID: owner, Name: "raced"}
	require.NoError(t, db.Create(&existing).Error)

	resolved, err := Resolve(db, owner, []string{"raced"})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, existing.ID, resolved[0].ID)
}
