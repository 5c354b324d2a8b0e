package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	uploader, err := NewLocalUploader(dir, "/uploads")
	require.NoError(t, err)

	userID := uuid.New()
	url, err := uploader.Upload(context.Background(), strings.NewReader("file body"), "report.pdf", userID)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(url, "/uploads/"+userID.String()+"/"))
	assert.True(t, strings.HasSuffix(url, "_report.pdf"))

	stored := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(dir, userID.String(), stored))
	require.NoError(t, err)
	assert.Equal(t, "file body", string(data))
}

func TestLocalUploaderStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	uploader, err := NewLocalUploader(dir, "/uploads")
	require.NoError(t, err)

	userID := uuid.New()
	url, err := uploader.Upload(context.Background(), strings.NewReader("x"), "../../etc/passwd", userID)
	require.NoError(t, err)

	// Имя усечено до последнего компонента
	assert.True(t, strings.HasSuffix(url, "_passwd"))
	assert.NotContains(t, url, "..")
}

func TestLocalUploaderUniqueNames(t *testing.T) {
	dir := t.TempDir()
	uploader, err := NewLocalUploader(dir, "/uploads")
	require.NoError(t, err)

	userID := uuid.New()
	first, err := uploader.Upload(context.Background(), strings.NewReader("a"), "same.txt", userID)
	require.NoError(t, err)
	second, err := uploader.Upload(context.Background(), strings.NewReader("b"), "same.txt", userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
