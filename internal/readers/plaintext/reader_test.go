package plaintext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestNew(t *testing.T) {
	reader := New()
	require.NotNil(t, reader)
	assert.Contains(t, reader.SourceTypes(), "txt")
	assert.Contains(t, reader.SourceTypes(), "transcript")
}

func TestRead_Success(t *testing.T) {
	path := writeFile(t, "note.txt", []byte("Spec update: replace bolt type A36\nwith A325"))

	res, err := New().Read(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Spec update: replace bolt type A36\nwith A325", res.Text)
	assert.Nil(t, res.Components)
}

func TestRead_InvalidUTF8Dropped(t *testing.T) {
	path := writeFile(t, "bad.txt", []byte("ok\xff\xfe text"))

	res, err := New().Read(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "ok text", res.Text)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := New().Read(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInput))
}

func TestDecode_StripsBOM(t *testing.T) {
	assert.Equal(t, "hello", Decode([]byte("\xEF\xBB\xBFhello")))
}
