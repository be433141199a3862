// Package inputval validates form input against struct tag rules.
//
// Fields declare rules with the `validate` tag and a display name with
// the `label` tag:
//
//	type createNoticeInput struct {
//		Title   string `validate:"required,min=5,max=200" label:"Title"`
//		Content string `validate:"required,min=10,max=2000" label:"Content"`
//	}
//
//	if result := inputval.Validate(input); result.HasErrors() {
//		renderWithError(result.First())
//		return
//	}
//
// Supported rules: required, min=N, max=N (rune length), email.
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Result collects validation failures in field declaration order.
type Result struct {
	Errors []string
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "" if validation passed.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// Validate checks the string fields of a struct against their
// `validate` tags. Non-string fields and untagged fields are skipped.
func Validate(input any) Result {
	var res Result

	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return res
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		rules := field.Tag.Get("validate")
		if rules == "" || field.Type.Kind() != reflect.String {
			continue
		}

		label := field.Tag.Get("label")
		if label == "" {
			label = field.Name
		}
		value := v.Field(i).String()

		if msg := checkRules(value, rules, label); msg != "" {
			res.Errors = append(res.Errors, msg)
		}
	}
	return res
}

func checkRules(value, rules, label string) string {
	trimmed := strings.TrimSpace(value)

	for _, rule := range strings.Split(rules, ",") {
		switch {
		case rule == "required":
			if trimmed == "" {
				return fmt.Sprintf("%s is required.", label)
			}
		case strings.HasPrefix(rule, "min="):
			n, err := strconv.Atoi(rule[len("min="):])
			if err != nil {
				continue
			}
			// min only applies to non-empty values; "required" handles empties.
			if trimmed != "" && utf8.RuneCountInString(trimmed) < n {
				return fmt.Sprintf("%s must be at least %d characters.", label, n)
			}
		case strings.HasPrefix(rule, "max="):
			n, err := strconv.Atoi(rule[len("max="):])
			if err != nil {
				continue
			}
			if utf8.RuneCountInString(trimmed) > n {
				return fmt.Sprintf("%s must be at most %d characters.", label, n)
			}
		case rule == "email":
			if trimmed != "" && !IsValidEmail(trimmed) {
				return fmt.Sprintf("%s must be a valid email address.", label)
			}
		}
	}
	return ""
}

// IsValidEmail checks basic email shape: one @, a non-empty local part
// without leading/trailing/consecutive dots, and a non-empty domain
// with the same dot rules. It intentionally accepts single-label
// domains (useful for dev environments).
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || strings.ContainsAny(email, " \t<>") {
		return false
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	local, domain := email[:at], email[at+1:]
	return validDotAtom(local) && validDotAtom(domain)
}

func validDotAtom(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	return !strings.Contains(s, "..")
}

// IsValidObjectID reports whether s looks like a 24-char hex Mongo ObjectID.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
