package file

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gatekeeper/internal/model"
)

func TestClient_UploadDownload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewClient(dir)
	require.NoError(t, err)

	ok, err := c.Exists(ctx, "verifiedUsers.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Upload(ctx, "verifiedUsers.json", bytes.NewReader([]byte(`["1"]`))))
	require.NoError(t, c.Upload(ctx, "verifiedUsers.json", bytes.NewReader([]byte(`["1","2"]`))))

	ok, err = c.Exists(ctx, "verifiedUsers.json")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := c.Download(ctx, "verifiedUsers.json")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `["1","2"]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestClient_NestedKey(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewClient(dir)
	require.NoError(t, err)

	require.NoError(t, c.Upload(ctx, "rosters/student.csv", bytes.NewReader([]byte("x"))))
	_, err = os.Stat(filepath.Join(dir, "rosters", "student.csv"))
	assert.NoError(t, err)
}

func TestClient_KeyCannotEscapeDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewClient(filepath.Join(dir, "inner"))
	require.NoError(t, err)

	require.NoError(t, c.Upload(ctx, "../escape.json", bytes.NewReader([]byte("x"))))
	_, err = os.Stat(filepath.Join(dir, "escape.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(filepath.Join(dir, "inner", "escape.json"))
	assert.NoError(t, err)
}

func TestClient_DownloadMissing(t *testing.T) {
	c, err := NewClient(t.TempDir())
	require.NoError(t, err)

	rc, err := c.Download(context.Background(), "absent")
	assert.Nil(t, rc)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestClient_UploadFailsOnReadError(t *testing.T) {
	c, err := NewClient(t.TempDir())
	require.NoError(t, err)

	err = c.Upload(context.Background(), "k", io.MultiReader(bytes.NewReader([]byte("a")), errReader{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write object")

	ok, err := c.Exists(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("read-fail") }
