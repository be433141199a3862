// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/consultations").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/edit", "/new").
	// These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks both the query parameter and form value for "return",
// validates the URL is safe (not an open redirect), optionally validates
// the prefix, and excludes specified subpaths to prevent redirect loops.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}

	if ret != "" {
		valid := true

		if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
			valid = false
		}
		for _, excluded := range opts.ExcludedSubpaths {
			if strings.Contains(ret, excluded) {
				valid = false
				break
			}
		}

		if valid {
			return ret
		}
	}

	return opts.Fallback
}

// Common back URL configurations for reuse across packages.
var (
	IwisBackURL = BackURLOptions{
		AllowedPrefix:    "/iwis",
		ExcludedSubpaths: []string{"/edit", "/archive", "/new", "/transfer"},
		Fallback:         "/iwis",
	}

	HapusBackURL = BackURLOptions{
		AllowedPrefix:    "/hapus",
		ExcludedSubpaths: []string{"/edit", "/archive", "/new", "/transfer"},
		Fallback:         "/hapus",
	}

	UsersBackURL = BackURLOptions{
		AllowedPrefix:    "/admin/users",
		ExcludedSubpaths: []string{"/verify", "/reject"},
		Fallback:         "/admin/users",
	}

	ConsultationsBackURL = BackURLOptions{
		AllowedPrefix:    "/consultations",
		ExcludedSubpaths: []string{"/new", "/vote"},
		Fallback:         "/consultations",
	}

	NoticesBackURL = BackURLOptions{
		AllowedPrefix:    "/notices",
		ExcludedSubpaths: []string{"/new", "/expire"},
		Fallback:         "/notices",
	}

	EventsBackURL = BackURLOptions{
		AllowedPrefix:    "/events",
		ExcludedSubpaths: []string{"/new", "/join", "/leave"},
		Fallback:         "/events",
	}
)
