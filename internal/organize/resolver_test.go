package organize

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-files-must-flow/internal/common"
)

func TestDuplicateResolver(t *testing.T) {
	t.Run("unoccupied path is returned unchanged", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		resolver := NewDuplicateResolver(fs, "_{n}", 100)

		resolved, err := resolver.Resolve("/organized/Documents/report.pdf")
		require.NoError(t, err)

		assert.Equal(t, "/organized/Documents/report.pdf", resolved)
	})

	t.Run("suffix is inserted before the extension", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/organized/Documents/report.pdf", []byte("a"), 0o644))

		resolver := NewDuplicateResolver(fs, "_{n}", 100)

		resolved, err := resolver.Resolve("/organized/Documents/report.pdf")
		require.NoError(t, err)

		assert.Equal(t, "/organized/Documents/report_1.pdf", resolved)
	})

	t.Run("indices increase strictly", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		resolver := NewDuplicateResolver(fs, "_{n}", 100)

		expected := []string{
			"/organized/Documents/report.pdf",
			"/organized/Documents/report_1.pdf",
			"/organized/Documents/report_2.pdf",
			"/organized/Documents/report_3.pdf",
		}
		for _, want := range expected {
			resolved, err := resolver.Resolve("/organized/Documents/report.pdf")
			require.NoError(t, err)
			assert.Equal(t, want, resolved)

			// Occupy the resolved name the way a real move would.
			require.NoError(t, afero.WriteFile(fs, resolved, []byte("a"), 0o644))
		}
	})

	t.Run("holes are filled with the first free index", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/d/report.pdf", []byte("a"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/d/report_1.pdf", []byte("a"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/d/report_3.pdf", []byte("a"), 0o644))

		resolver := NewDuplicateResolver(fs, "_{n}", 100)

		resolved, err := resolver.Resolve("/d/report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "/d/report_2.pdf", resolved)
	})

	t.Run("files without extension", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/d/Makefile", []byte("a"), 0o644))

		resolver := NewDuplicateResolver(fs, "_{n}", 100)

		resolved, err := resolver.Resolve("/d/Makefile")
		require.NoError(t, err)
		assert.Equal(t, "/d/Makefile_1", resolved)
	})

	t.Run("custom pattern", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/d/photo.jpg", []byte("a"), 0o644))

		resolver := NewDuplicateResolver(fs, " ({n})", 100)

		resolved, err := resolver.Resolve("/d/photo.jpg")
		require.NoError(t, err)
		assert.Equal(t, "/d/photo (1).jpg", resolved)
	})

	t.Run("exhaustion returns sentinel error", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/d/report.pdf", []byte("a"), 0o644))
		for n := 1; n <= 5; n++ {
			require.NoError(t, afero.WriteFile(fs, fmt.Sprintf("/d/report_%d.pdf", n), []byte("a"), 0o644))
		}

		resolver := NewDuplicateResolver(fs, "_{n}", 5)

		_, err := resolver.Resolve("/d/report.pdf")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrDuplicatesExhausted)
	})
}
