package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Protocol-Lattice/chat-bridge/pkg/upload"
)

func ref(name, mt string) upload.FileRef {
	return upload.FileRef{Path: "/tmp/" + name, OriginalName: name, MIME: mt}
}

func TestRouteStrategies(t *testing.T) {
	tests := []struct {
		name  string
		files []upload.FileRef
		want  Strategy
	}{
		{"no files", nil, TextOnly},
		{"image only", []upload.FileRef{ref("a.png", "image/png")}, ImagesOnly},
		{"document only", []upload.FileRef{ref("a.pdf", "application/pdf")}, DocumentsOnly},
		{"mixed", []upload.FileRef{ref("a.png", "image/png"), ref("b.pdf", "application/pdf")}, Mixed},
		{"only unsupported", []upload.FileRef{ref("a.zip", "application/zip")}, TextOnly},
		{"unsupported image type", []upload.FileRef{ref("a.bmp", "image/bmp")}, TextOnly},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Route(tc.files).Strategy)
		})
	}
}

func TestRoutePartition(t *testing.T) {
	p := Route([]upload.FileRef{
		ref("cat.jpg", "image/jpg"),
		ref("notes.txt", "text/plain"),
		ref("virus.exe", "application/x-msdownload"),
		ref("contract.odt", "application/vnd.oasis.opendocument.text"),
		ref("archive.zip", "application/zip"),
	})

	assert.Equal(t, Mixed, p.Strategy)
	assert.Equal(t, []string{"cat.jpg"}, p.ImageNames())
	assert.Equal(t, "image/jpeg", p.Images[0].MIME)
	assert.Len(t, p.Documents, 2)
	assert.Equal(t, []string{"virus.exe", "archive.zip"}, p.Unsupported)
	assert.Contains(t, p.UnsupportedNote(), "virus.exe, archive.zip")
}

func TestUnsupportedNoteEmpty(t *testing.T) {
	assert.Empty(t, Route([]upload.FileRef{ref("a.pdf", "application/pdf")}).UnsupportedNote())
}

func TestSelectStrategyIsTotal(t *testing.T) {
	assert.Equal(t, TextOnly, SelectStrategy(false, false))
	assert.Equal(t, ImagesOnly, SelectStrategy(true, false))
	assert.Equal(t, DocumentsOnly, SelectStrategy(false, true))
	assert.Equal(t, Mixed, SelectStrategy(true, true))
	assert.Equal(t, "documents_only", DocumentsOnly.String())
}

func TestAllowListSize(t *testing.T) {
	assert.Len(t, Allowed, 10)
}
