package inputval

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"a@b.co", true},
		{"user@localhost", true}, // single-label domains allowed for dev

		// Invalid emails - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid emails - missing parts
		{"user", false},
		{"user@", false},
		{"@example.com", false},

		// Invalid emails - bad dot placement
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},

		// Invalid emails - display name format
		{"User Name <user@example.com>", false},

		// Invalid emails - spaces
		{"user @example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidate_Required(t *testing.T) {
	type input struct {
		Title string `validate:"required,min=5,max=200" label:"Title"`
	}

	res := Validate(input{})
	if !res.HasErrors() {
		t.Fatal("expected error for empty required field")
	}
	if res.First() != "Title is required." {
		t.Errorf("First() = %q", res.First())
	}
}

func TestValidate_MinMax(t *testing.T) {
	type input struct {
		Title string `validate:"required,min=5,max=200" label:"Title"`
	}

	if res := Validate(input{Title: "abc"}); res.First() != "Title must be at least 5 characters." {
		t.Errorf("min: First() = %q", res.First())
	}

	long := strings.Repeat("a", 201)
	if res := Validate(input{Title: long}); res.First() != "Title must be at most 200 characters." {
		t.Errorf("max: First() = %q", res.First())
	}

	if res := Validate(input{Title: "Kia ora koutou"}); res.HasErrors() {
		t.Errorf("valid input reported errors: %v", res.Errors)
	}
}

func TestValidate_MinCountsRunes(t *testing.T) {
	type input struct {
		Name string `validate:"min=5" label:"Name"`
	}

	// 5 runes, more than 5 bytes
	if res := Validate(input{Name: "māori"}); res.HasErrors() {
		t.Errorf("rune-length input reported errors: %v", res.Errors)
	}
}

func TestValidate_Email(t *testing.T) {
	type input struct {
		Email string `validate:"required,email" label:"Email"`
	}

	if res := Validate(input{Email: "not-an-email"}); res.First() != "Email must be a valid email address." {
		t.Errorf("First() = %q", res.First())
	}
	if res := Validate(input{Email: "aroha@example.com"}); res.HasErrors() {
		t.Errorf("valid email reported errors: %v", res.Errors)
	}
}

func TestValidate_MultipleFieldsOrder(t *testing.T) {
	type input struct {
		Title   string `validate:"required" label:"Title"`
		Content string `validate:"required" label:"Content"`
	}

	res := Validate(input{})
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(res.Errors))
	}
	if res.Errors[0] != "Title is required." {
		t.Errorf("errors out of declaration order: %v", res.Errors)
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true},
		{"  507f1f77bcf86cd799439011  ", true},
		{"", false},
		{"507f1f77bcf86cd79943901", false},
		{"507f1f77bcf86cd7994390111", false},
		{"507f1f77bcf86cd79943901g", false},
		{"not-a-valid-id", false},
	}

	for _, tt := range tests {
		if got := IsValidObjectID(tt.id); got != tt.want {
			t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
