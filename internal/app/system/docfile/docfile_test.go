package docfile

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_AllowedTypes(t *testing.T) {
	tests := []struct {
		filename string
		wantCT   string
	}{
		{"passport.pdf", "application/pdf"},
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"scan.PNG", "image/png"},
	}

	for _, tt := range tests {
		ct, err := Validate(tt.filename, 1024)
		if err != nil {
			t.Errorf("Validate(%q) error: %v", tt.filename, err)
			continue
		}
		if ct != tt.wantCT {
			t.Errorf("Validate(%q) = %q, want %q", tt.filename, ct, tt.wantCT)
		}
	}
}

func TestValidate_RejectsOtherTypes(t *testing.T) {
	for _, name := range []string{"doc.docx", "archive.zip", "script.sh", "noext"} {
		if _, err := Validate(name, 1024); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Validate(%q) err = %v, want ErrUnsupportedType", name, err)
		}
	}
}

func TestValidate_SizeLimit(t *testing.T) {
	if _, err := Validate("passport.pdf", MaxSize); err != nil {
		t.Errorf("exactly MaxSize should pass, got %v", err)
	}
	if _, err := Validate("passport.pdf", MaxSize+1); !errors.Is(err, ErrTooLarge) {
		t.Errorf("over MaxSize err = %v, want ErrTooLarge", err)
	}
}

func TestStoragePath(t *testing.T) {
	p := StoragePath("My Passport.PDF")

	if !strings.HasPrefix(p, StoragePrefix+"/") {
		t.Errorf("path %q missing prefix", p)
	}
	if !strings.HasSuffix(p, ".pdf") {
		t.Errorf("path %q should keep lowercased extension", p)
	}
	if strings.Contains(p, "Passport") {
		t.Errorf("path %q leaks the original filename", p)
	}
	if p == StoragePath("My Passport.PDF") {
		t.Error("two paths for the same file should differ")
	}
}
