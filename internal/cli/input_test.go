package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileFlags_ReadText(t *testing.T) {
	t.Run("stdin by default", func(t *testing.T) {
		text, err := ReconcileFlags{}.ReadText(strings.NewReader("22만원"))
		require.NoError(t, err)
		assert.Equal(t, "22만원", text)
	})

	t.Run("dash means stdin", func(t *testing.T) {
		text, err := ReconcileFlags{File: "-"}.ReadText(strings.NewReader("80,000원"))
		require.NoError(t, err)
		assert.Equal(t, "80,000원", text)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notice.txt")
		require.NoError(t, os.WriteFile(path, []byte("노*연 250,000원"), 0o600))

		text, err := ReconcileFlags{File: path}.ReadText(nil)
		require.NoError(t, err)
		assert.Equal(t, "노*연 250,000원", text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReconcileFlags{File: filepath.Join(t.TempDir(), "nope.txt")}.ReadText(nil)
		assert.Error(t, err)
	})
}

func TestReconcileFlags_ReadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	img, err := ReconcileFlags{Image: path}.ReadImage()
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format())
	assert.Equal(t, []byte("png"), img.Data)
}

func TestReconcileFlags_Validate(t *testing.T) {
	assert.NoError(t, ReconcileFlags{File: "a.txt"}.Validate())
	assert.ErrorIs(t, ReconcileFlags{File: "a.txt", Image: "b.png"}.Validate(), ErrConflictingInput)
}
