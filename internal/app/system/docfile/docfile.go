// Package docfile validates citizenship document uploads and assigns
// them unguessable storage names. Documents hold personal information,
// so the original filename never appears in a URL or on disk.
package docfile

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxSize is the upload limit for citizenship documents.
const MaxSize = 2 << 20 // 2 MB

// StoragePrefix is where documents live inside the storage backend.
// Files under this prefix are never served directly; access goes
// through the authenticated document proxy.
const StoragePrefix = "protected_citizenship_docs"

var (
	ErrTooLarge        = errors.New("document exceeds the 2 MB size limit")
	ErrUnsupportedType = errors.New("document must be a PDF, JPG, or PNG file")
)

// extContentTypes maps allowed file extensions to their content types.
var extContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Validate checks an upload's filename and declared size. It returns
// the canonical content type for storage.
func Validate(filename string, size int64) (contentType string, err error) {
	if size > MaxSize {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(path.Ext(filename))
	ct, ok := extContentTypes[ext]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ct, nil
}

// StoragePath returns a randomized path for the document, keeping only
// the original extension.
func StoragePath(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", StoragePrefix, uuid.NewString(), ext)
}

// AttachmentPrefix is where notice and event attachments live. Like
// documents, they are served through an authenticated proxy only.
const AttachmentPrefix = "protected_attachments"

// AttachmentStoragePath returns a randomized path for a notice or
// event attachment, keeping only the original extension.
func AttachmentStoragePath(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", AttachmentPrefix, uuid.NewString(), ext)
}
