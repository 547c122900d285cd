package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// Inspector checks each attachment on local disk and describes it.
type Inspector struct {
	Logger *slog.Logger
	// Stat defaults to os.Stat.
	Stat func(name string) (fs.FileInfo, error)
}

// Inspect returns one Analysis per ref, in order. A failure on one file is
// recorded on that entry and never stops the others.
func (in Inspector) Inspect(refs []FileRef) []Analysis {
	out := make([]Analysis, 0, len(refs))
	for _, ref := range refs {
		a := in.inspectOne(ref)
		in.logger().Info("file analysed",
			"name", a.Name,
			"type", a.Type,
			"size", a.Size,
			"status", a.Status,
		)
		out = append(out, a)
	}
	return out
}

func (in Inspector) inspectOne(ref FileRef) Analysis {
	// Type reports what the widget declared; the normalised type only drives
	// the category.
	mt := NormalizeMIME(ref.OriginalName, ref.MIME)
	a := Analysis{Name: ref.OriginalName, Type: ref.MIME}

	stat := in.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(ref.Path)
	switch {
	case ref.Path == "" || errors.Is(err, fs.ErrNotExist):
		a.Status = StatusNotFound
		a.Analysis = "File not found on server"
		return a
	case err != nil:
		a.Exists = true
		a.Status = StatusError
		a.Analysis = fmt.Sprintf("Error reading file: %v", err)
		return a
	case info.IsDir():
		a.Exists = true
		a.Status = StatusError
		a.Analysis = "Error reading file: path is a directory"
		return a
	}

	a.Exists = true
	a.Size = info.Size()
	a.Category = CategoryOf(mt)
	a.Status = StatusReady
	switch a.Category {
	case CategoryImage:
		a.Analysis = fmt.Sprintf("Image file detected (%d bytes) - ready for visual analysis", a.Size)
	case CategoryDocument:
		if mt == "application/pdf" {
			a.Analysis = fmt.Sprintf("PDF document detected (%d bytes) - ready for text extraction", a.Size)
		} else {
			a.Analysis = fmt.Sprintf("Document detected (%d bytes) - ready for document search", a.Size)
		}
	case CategoryText:
		a.Analysis = fmt.Sprintf("Text file detected (%d bytes) - ready for content analysis", a.Size)
	default:
		a.Status = StatusPending
		a.Analysis = fmt.Sprintf("Unsupported file type %q (%d bytes) - file received but will not be processed", mt, a.Size)
	}
	return a
}

func (in Inspector) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.Default()
}
