package upload

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Protocol-Lattice/chat-bridge/pkg/logging"
)

func quietInspector() Inspector {
	return Inspector{Logger: logging.Discard()}
}

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestInspectMissingFile(t *testing.T) {
	got := quietInspector().Inspect([]FileRef{{
		Path:         filepath.Join(t.TempDir(), "nope.pdf"),
		OriginalName: "nope.pdf",
		MIME:         "application/pdf",
	}})

	require.Len(t, got, 1)
	assert.False(t, got[0].Exists)
	assert.Zero(t, got[0].Size)
	assert.Equal(t, StatusNotFound, got[0].Status)
	assert.Empty(t, got[0].Category)
}

func TestInspectCategories(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		mime     string
		category Category
		status   Status
		contains string
	}{
		{"photo.png", "image/png", CategoryImage, StatusReady, "Image file"},
		{"report.pdf", "application/pdf", CategoryDocument, StatusReady, "PDF document"},
		{"notes.txt", "text/plain", CategoryText, StatusReady, "Text file"},
		{"letter.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", CategoryDocument, StatusReady, "Document detected"},
		{"setup.exe", "application/x-msdownload", CategoryUnsupported, StatusPending, "Unsupported"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, tc.name, 42)
			got := quietInspector().Inspect([]FileRef{{Path: path, OriginalName: tc.name, MIME: tc.mime}})

			require.Len(t, got, 1)
			assert.True(t, got[0].Exists)
			assert.EqualValues(t, 42, got[0].Size)
			assert.Equal(t, tc.category, got[0].Category)
			assert.Equal(t, tc.status, got[0].Status)
			assert.Contains(t, got[0].Analysis, tc.contains)
			assert.Contains(t, got[0].Analysis, "42 bytes")
		})
	}
}

func TestInspectStatErrorDoesNotBlockBatch(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "ok.txt", 3)
	in := quietInspector()
	in.Stat = func(name string) (fs.FileInfo, error) {
		if name == "/locked" {
			return nil, errors.New("permission denied")
		}
		return os.Stat(name)
	}

	got := in.Inspect([]FileRef{
		{Path: "/locked", OriginalName: "locked.pdf", MIME: "application/pdf"},
		{Path: good, OriginalName: "ok.txt", MIME: "text/plain"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, StatusError, got[0].Status)
	assert.Zero(t, got[0].Size)
	assert.Equal(t, StatusReady, got[1].Status)
	assert.EqualValues(t, 3, got[1].Size)
}

func TestInspectDirectoryIsError(t *testing.T) {
	got := quietInspector().Inspect([]FileRef{{Path: t.TempDir(), OriginalName: "dir", MIME: "text/plain"}})
	require.Len(t, got, 1)
	assert.Equal(t, StatusError, got[0].Status)
}

func TestInspectReportsDeclaredType(t *testing.T) {
	path := writeFile(t, t.TempDir(), "upload-1", 5)
	got := quietInspector().Inspect([]FileRef{{Path: path, OriginalName: "photo.jpg", MIME: "IMAGE/JPG"}})

	require.Len(t, got, 1)
	assert.Equal(t, "IMAGE/JPG", got[0].Type)
	assert.Equal(t, CategoryImage, got[0].Category)
	assert.Equal(t, StatusReady, got[0].Status)
}

func TestNormalizeMIME(t *testing.T) {
	tests := []struct {
		name, declared, want string
	}{
		{"a.jpg", "IMAGE/JPG", "image/jpeg"},
		{"a.txt", "text/plain; charset=utf-8", "text/plain"},
		{"a.pdf", "", "application/pdf"},
		{"a.docx", "application/", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"a.bin", "application/zip", "application/zip"},
		{"noext", "", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeMIME(tc.name, tc.declared), tc.name)
	}
}
