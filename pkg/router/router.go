// Package router decides which attachments can be forwarded to the agent and
// how the request should be handled.
package router

import (
	"fmt"
	"strings"

	"github.com/Protocol-Lattice/chat-bridge/pkg/upload"
)

// Strategy is the content-handling path chosen for a request.
type Strategy int

const (
	TextOnly Strategy = iota
	ImagesOnly
	DocumentsOnly
	Mixed
)

func (s Strategy) String() string {
	switch s {
	case TextOnly:
		return "text_only"
	case ImagesOnly:
		return "images_only"
	case DocumentsOnly:
		return "documents_only"
	case Mixed:
		return "mixed"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Allowed lists the media types the agent service accepts.
var Allowed = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"image/webp":         {},
	"application/pdf":    {},
	"text/plain":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/rtf":                         {},
	"application/vnd.oasis.opendocument.text": {},
}

// Plan is the routing decision for one request.
type Plan struct {
	Strategy    Strategy
	Images      []upload.FileRef
	Documents   []upload.FileRef
	Unsupported []string
}

// SelectStrategy depends only on whether each set is empty.
func SelectStrategy(hasImages, hasDocuments bool) Strategy {
	switch {
	case hasImages && hasDocuments:
		return Mixed
	case hasImages:
		return ImagesOnly
	case hasDocuments:
		return DocumentsOnly
	default:
		return TextOnly
	}
}

// Route partitions refs into images, documents and unsupported names.
// Media types are normalised before the allow-list check; the refs in the
// plan carry the normalised type.
func Route(refs []upload.FileRef) Plan {
	var p Plan
	for _, ref := range refs {
		ref.MIME = upload.NormalizeMIME(ref.OriginalName, ref.MIME)
		if _, ok := Allowed[ref.MIME]; !ok {
			p.Unsupported = append(p.Unsupported, ref.OriginalName)
			continue
		}
		if strings.HasPrefix(ref.MIME, "image/") {
			p.Images = append(p.Images, ref)
		} else {
			p.Documents = append(p.Documents, ref)
		}
	}
	p.Strategy = SelectStrategy(len(p.Images) > 0, len(p.Documents) > 0)
	return p
}

// UnsupportedNote is appended to whatever the agent receives. It is empty
// when every file was supported.
func (p Plan) UnsupportedNote() string {
	if len(p.Unsupported) == 0 {
		return ""
	}
	return fmt.Sprintf("Note: The following files could not be processed because their file type is not supported: %s",
		strings.Join(p.Unsupported, ", "))
}

// ImageNames returns the display names of the image attachments.
func (p Plan) ImageNames() []string {
	names := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		names = append(names, img.OriginalName)
	}
	return names
}
