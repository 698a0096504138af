package constants

import (
	"mime"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the largest attachment accepted for extraction.
const MaxUploadBytes = 4 * 1024 * 1024

// MIME types accepted as extraction attachments.
const (
	MIMEPDF  = "application/pdf"
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEWEBP = "image/webp"
)

// AllowedExtensions holds the file extensions accepted as attachments.
var AllowedExtensions = map[string]string{
	"pdf":  MIMEPDF,
	"png":  MIMEPNG,
	"jpg":  MIMEJPEG,
	"jpeg": MIMEJPEG,
	"webp": MIMEWEBP,
	"heic": "image/heic",
	"heif": "image/heif",
	"gif":  "image/gif",
}

// TextExtensions are read as plain text instead of sent as binary.
var TextExtensions = map[string]struct{}{
	"txt": {},
	"md":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MIMEForPath returns the attachment MIME type for a file path, or "".
func MIMEForPath(path string) string {
	ext := NormalizeExt(filepath.Ext(path))
	if mt, ok := AllowedExtensions[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension("." + ext); IsAllowedMIME(mt) {
		return stripParams(mt)
	}
	return ""
}

// IsTextPath reports whether the file should be read as edital text.
func IsTextPath(path string) bool {
	_, ok := TextExtensions[NormalizeExt(filepath.Ext(path))]
	return ok
}

// IsAllowedMIME accepts any image type and PDF.
func IsAllowedMIME(mt string) bool {
	mt = stripParams(mt)
	return mt == MIMEPDF || strings.HasPrefix(mt, "image/")
}

func stripParams(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
