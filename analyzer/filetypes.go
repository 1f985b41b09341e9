package analyzer

import (
	"mime"
	"strings"
)

// Accepted upload types, keyed by extension.
var acceptedTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// MimeTypeForExt returns the canonical MIME type of an accepted extension.
func MimeTypeForExt(ext string) string {
	if t, ok := acceptedTypes[strings.ToLower(ext)]; ok {
		return t
	}
	return "application/octet-stream"
}

// IsSupported checks both the extension and the declared MIME type. A
// generic or missing MIME type defers to the extension; a specific one
// must be one of the accepted types.
func IsSupported(doc Document) bool {
	if _, ok := acceptedTypes[doc.Ext()]; !ok {
		return false
	}
	declared := doc.ContentType
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		declared = mt
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared == "" || declared == "application/octet-stream" {
		return true
	}
	for _, t := range acceptedTypes {
		if declared == t {
			return true
		}
	}
	return false
}
