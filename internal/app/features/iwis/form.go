// internal/app/features/iwis/form.go
package iwis

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/unitpolicy"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type formVM struct {
	formutil.Base

	IwiID       string
	Name        string
	Description string
	IsEdit      bool
}

// loadIwi resolves the {iwiID} route parameter. On failure it renders
// the not-found page and returns ok=false.
func (h *Handler) loadIwi(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Iwi, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "iwiID"))
	if err != nil {
		uierrors.RenderError(w, r, "That iwi does not exist.", "/admin/iwis")
		return models.Iwi{}, false
	}
	iwi, err := iwistore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, "That iwi does not exist.", "/admin/iwis")
		return models.Iwi{}, false
	}
	return iwi, true
}

// ServeNewForm renders the create form.
// GET /admin/iwis/new
func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanManageIwis(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}

	vm := formVM{}
	formutil.SetBase(&vm.Base, r, "New iwi", "/admin/iwis")
	templates.Render(w, r, "iwi_form", vm)
}

// HandleCreate creates an iwi. Names are unique among active iwi,
// case- and diacritic-insensitively.
// POST /admin/iwis/new
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanManageIwis(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/admin/iwis")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))

	renderWithError := func(msg string) {
		vm := formVM{Name: name, Description: description}
		formutil.SetBase(&vm.Base, r, "New iwi", "/admin/iwis")
		vm.SetError(msg)
		templates.Render(w, r, "iwi_form", vm)
	}

	if name == "" {
		renderWithError("A name is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwi, err := iwistore.New(h.DB).Create(ctx, models.Iwi{Name: name, Description: description})
	if err == iwistore.ErrDuplicateIwi {
		renderWithError("An active iwi with this name already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to create iwi", err, "Failed to create the iwi.", "/admin/iwis")
		return
	}

	h.Log.Info("iwi created", zap.String("iwi_id", iwi.ID.Hex()), zap.String("name", iwi.Name))
	http.Redirect(w, r, "/admin/iwis?success=created", http.StatusSeeOther)
}

// ServeEditForm renders the edit form.
// GET /admin/iwis/{iwiID}/edit
func (h *Handler) ServeEditForm(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanManageIwis(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwi, ok := h.loadIwi(ctx, w, r)
	if !ok {
		return
	}

	vm := formVM{
		IwiID:       iwi.ID.Hex(),
		Name:        iwi.Name,
		Description: iwi.Description,
		IsEdit:      true,
	}
	formutil.SetBase(&vm.Base, r, "Edit iwi", "/admin/iwis")
	templates.Render(w, r, "iwi_form", vm)
}

// HandleUpdate saves name and description changes.
// POST /admin/iwis/{iwiID}/edit
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanManageIwis(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/admin/iwis")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwi, ok := h.loadIwi(ctx, w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))

	renderWithError := func(msg string) {
		vm := formVM{IwiID: iwi.ID.Hex(), Name: name, Description: description, IsEdit: true}
		formutil.SetBase(&vm.Base, r, "Edit iwi", "/admin/iwis")
		vm.SetError(msg)
		templates.Render(w, r, "iwi_form", vm)
	}

	if name == "" {
		renderWithError("A name is required.")
		return
	}

	err := iwistore.New(h.DB).Update(ctx, iwi.ID, name, description)
	if err == iwistore.ErrDuplicateIwi {
		renderWithError("An active iwi with this name already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to update iwi", err, "Failed to save changes.", "/admin/iwis")
		return
	}

	http.Redirect(w, r, "/admin/iwis/"+iwi.ID.Hex()+"?success=updated", http.StatusSeeOther)
}
