package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchiveRoundTrip(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	docID := uuid.New()

	path, err := archive.Upload(ctx, docID, "gdpr policy.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Contains(t, path, docID.String())
	assert.NotContains(t, path, " ")

	reader, err := archive.Download(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))

	require.NoError(t, archive.Delete(ctx, path))
	_, err = archive.Download(ctx, path)
	assert.Error(t, err)

	// Deleting twice is a no-op
	assert.NoError(t, archive.Delete(ctx, path))
}

func TestArchivePathSanitizesName(t *testing.T) {
	docID := uuid.MustParse("aabbccdd-0000-0000-0000-000000000000")
	path := archivePath(docID, "my contract/v2.pdf")

	assert.True(t, strings.HasPrefix(path, "aa/"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))
	assert.NotContains(t, path[3:], "/")
}
