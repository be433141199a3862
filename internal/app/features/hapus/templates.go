// internal/app/features/hapus/templates.go
package hapus

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "hapus",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
