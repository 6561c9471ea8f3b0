package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategorySet(t *testing.T) {
	t.Run("fallback is appended when absent", func(t *testing.T) {
		set, err := NewCategorySet([]Category{
			{Name: "Documents"},
			{Name: "Images", Folder: "Pictures"},
		}, "Miscellaneous")
		require.NoError(t, err)

		assert.Equal(t, []string{"Documents", "Images", "Miscellaneous"}, set.Names())
		assert.Equal(t, "Miscellaneous", set.Fallback())
		assert.True(t, set.Contains("Miscellaneous"))
	})

	t.Run("fallback already in the list is not duplicated", func(t *testing.T) {
		set, err := NewCategorySet([]Category{
			{Name: "Documents"},
			{Name: "Miscellaneous", Folder: "Other"},
		}, "Miscellaneous")
		require.NoError(t, err)

		assert.Equal(t, []string{"Documents", "Miscellaneous"}, set.Names())

		// The configured folder wins over the implicit one.
		folder, ok := set.FolderFor("Miscellaneous")
		assert.True(t, ok)
		assert.Equal(t, "Other", folder)
	})

	t.Run("folder defaults to the category name", func(t *testing.T) {
		set, err := NewCategorySet([]Category{{Name: "Documents"}}, "Miscellaneous")
		require.NoError(t, err)

		folder, ok := set.FolderFor("Documents")
		assert.True(t, ok)
		assert.Equal(t, "Documents", folder)

		folder, ok = set.FolderFor("Images")
		assert.False(t, ok)
		assert.Empty(t, folder)
	})

	t.Run("explicit folder is kept", func(t *testing.T) {
		set, err := NewCategorySet([]Category{{Name: "Images", Folder: "Pictures"}}, "Miscellaneous")
		require.NoError(t, err)

		folder, _ := set.FolderFor("Images")
		assert.Equal(t, "Pictures", folder)
	})

	t.Run("empty fallback is rejected", func(t *testing.T) {
		_, err := NewCategorySet([]Category{{Name: "Documents"}}, "")
		require.Error(t, err)
	})

	t.Run("empty category name is rejected", func(t *testing.T) {
		_, err := NewCategorySet([]Category{{Name: ""}}, "Miscellaneous")
		require.Error(t, err)
	})

	t.Run("duplicate category is rejected", func(t *testing.T) {
		_, err := NewCategorySet([]Category{
			{Name: "Documents"},
			{Name: "Documents", Folder: "Docs"},
		}, "Miscellaneous")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("categories returns a copy", func(t *testing.T) {
		set, err := NewCategorySet([]Category{{Name: "Documents"}}, "Miscellaneous")
		require.NoError(t, err)

		categories := set.Categories()
		categories[0].Name = "Tampered"

		assert.Equal(t, "Documents", set.Categories()[0].Name)
	})
}

func TestOperationRecordSucceeded(t *testing.T) {
	assert.True(t, OperationRecord{Outcome: OutcomeSucceeded}.Succeeded())
	assert.False(t, OperationRecord{Outcome: OutcomeFailed}.Succeeded())
	assert.False(t, OperationRecord{}.Succeeded())
}
