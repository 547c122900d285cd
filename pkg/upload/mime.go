package upload

import (
	"mime"
	"path/filepath"
	"strings"
)

var (
	mimeExtMap = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".pdf":  "application/pdf",
		".txt":  "text/plain",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".rtf":  "application/rtf",
		".odt":  "application/vnd.oasis.opendocument.text",
	}

	mimeAliasMap = map[string]string{
		"image/jpg":   "image/jpeg",
		"image/pjpeg": "image/jpeg",
		"image/x-png": "image/png",
		"text/rtf":    "application/rtf",
	}
)

// NormalizeMIME lower-cases a declared media type, drops parameters, resolves
// common aliases and falls back to the file extension when the declared type
// is empty or malformed.
func NormalizeMIME(name, declared string) string {
	raw := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if normalized, ok := mimeAliasMap[raw]; ok {
		return normalized
	}
	if raw == "" || !strings.Contains(raw, "/") || strings.HasSuffix(raw, "/") {
		if via := fromExt(name); via != "" {
			return via
		}
	}
	return raw
}

func fromExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if mt, ok := mimeExtMap[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return strings.TrimSpace(mt)
	}
	return ""
}

// CategoryOf maps a normalized media type to its category.
func CategoryOf(mt string) Category {
	switch {
	case strings.HasPrefix(mt, "image/"):
		return CategoryImage
	case mt == "text/plain":
		return CategoryText
	}
	switch mt {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/rtf",
		"application/vnd.oasis.opendocument.text":
		return CategoryDocument
	}
	return CategoryUnsupported
}
