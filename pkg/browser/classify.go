package browser

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind classifies a listed entry.
type Kind int

const (
	KindOther Kind = iota
	KindDirectory
	KindImage
	KindPdf
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindImage:
		return "image"
	case KindPdf:
		return "pdf"
	}
	return "other"
}

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// MimeByName guesses a MIME type from the file extension, "" when unknown.
func MimeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}

// MimeByContent guesses a MIME type from the leading bytes of a file.
// Returns "" when nothing more specific than a byte stream is detected.
func MimeByContent(head []byte) string {
	if len(head) == 0 {
		return ""
	}
	m := mimetype.Detect(head)
	if m.Is("application/octet-stream") {
		return ""
	}
	return m.String()
}

// KindOf maps a MIME type to a Kind.
func KindOf(mimeType string) Kind {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = mimeType
	}
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return KindImage
	case mediaType == "application/pdf":
		return KindPdf
	}
	return KindOther
}
