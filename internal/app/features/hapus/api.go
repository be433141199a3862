// internal/app/features/hapus/api.go
package hapus

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type optionsVM struct {
	Hapus []models.Hapu
}

type hapuJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ServeOptions returns the active hapū of an iwi. HTMX requests get an
// <option> list for swapping into a select; everything else gets JSON.
// GET /api/hapus?iwi_id=...
func (h *Handler) ServeOptions(w http.ResponseWriter, r *http.Request) {
	raw := query.Get(r, "iwi_id")
	if raw == "" {
		raw = query.Get(r, "iwi")
	}

	var hapus []models.Hapu
	if iwiID, err := primitive.ObjectIDFromHex(raw); err == nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		hapus, err = hapustore.New(h.DB).ListActiveByIwi(ctx, iwiID)
		if err != nil {
			h.Log.Error("hapu lookup failed", zap.Error(err))
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
	}

	if r.Header.Get("HX-Request") == "true" {
		templates.RenderSnippet(w, "hapu_options", optionsVM{Hapus: hapus})
		return
	}

	out := make([]hapuJSON, 0, len(hapus))
	for _, hp := range hapus {
		out = append(out, hapuJSON{ID: hp.ID.Hex(), Name: hp.Name})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.Log.Error("hapu json encode failed", zap.Error(err))
	}
}
