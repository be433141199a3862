// internal/app/features/hapus/form.go
package hapus

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/unitpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type formVM struct {
	formutil.Base

	HapuID      string
	IwiID       string
	Name        string
	Description string
	IsEdit      bool
	Iwis        []models.Iwi
}

// loadHapu resolves the {hapuID} route parameter.
func (h *Handler) loadHapu(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Hapu, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "hapuID"))
	if err != nil {
		uierrors.RenderError(w, r, "That hapū does not exist.", "/admin/hapus")
		return models.Hapu{}, false
	}
	hapu, err := hapustore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, "That hapū does not exist.", "/admin/hapus")
		return models.Hapu{}, false
	}
	return hapu, true
}

// manageableIwis lists the iwi the user may create hapū under.
func (h *Handler) manageableIwis(ctx context.Context, r *http.Request) ([]models.Iwi, error) {
	if authz.IsStaff(r) {
		return iwistore.New(h.DB).ListActive(ctx)
	}
	iwis, err := iwistore.New(h.DB).GetByIDs(ctx, authz.LeaderIwiIDs(r))
	if err != nil {
		return nil, err
	}
	active := iwis[:0]
	for _, iwi := range iwis {
		if !iwi.IsArchived {
			active = append(active, iwi)
		}
	}
	return active, nil
}

// ServeNewForm renders the create form.
// GET /admin/hapus/new
func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanCreateHapu(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwis, err := h.manageableIwis(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load iwis", err, "Failed to load the form.", "/admin/hapus")
		return
	}

	vm := formVM{Iwis: iwis}
	formutil.SetBase(&vm.Base, r, "New hapū", "/admin/hapus")
	templates.Render(w, r, "hapu_form", vm)
}

// HandleCreate creates a hapū under an iwi the user manages. Names are
// unique among that iwi's active hapū.
// POST /admin/hapus/new
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanCreateHapu(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/admin/hapus")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	iwiRaw := r.FormValue("iwi_id")

	renderWithError := func(msg string) {
		iwis, err := h.manageableIwis(ctx, r)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load iwis", err, "Failed to load the form.", "/admin/hapus")
			return
		}
		vm := formVM{Name: name, Description: description, IwiID: iwiRaw, Iwis: iwis}
		formutil.SetBase(&vm.Base, r, "New hapū", "/admin/hapus")
		vm.SetError(msg)
		templates.Render(w, r, "hapu_form", vm)
	}

	if name == "" {
		renderWithError("A name is required.")
		return
	}

	iwiID, err := primitive.ObjectIDFromHex(iwiRaw)
	if err != nil {
		renderWithError("Please choose an iwi.")
		return
	}

	iwi, err := iwistore.New(h.DB).GetByID(ctx, iwiID)
	if err != nil || iwi.IsArchived {
		renderWithError("Please choose an active iwi.")
		return
	}
	if !authz.IsStaff(r) && !authz.LeadsIwi(r, iwi.ID) {
		uierrors.RenderForbidden(w, r, "You do not lead this iwi.", "/admin/hapus")
		return
	}

	hapu, err := hapustore.New(h.DB).Create(ctx, models.Hapu{
		IwiID:       iwi.ID,
		Name:        name,
		Description: description,
	})
	if err == hapustore.ErrDuplicateHapu {
		renderWithError("This iwi already has an active hapū with this name.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to create hapu", err, "Failed to create the hapū.", "/admin/hapus")
		return
	}

	h.Log.Info("hapu created", zap.String("hapu_id", hapu.ID.Hex()), zap.String("iwi_id", iwi.ID.Hex()))
	http.Redirect(w, r, "/admin/hapus?success=created", http.StatusSeeOther)
}

// ServeEditForm renders the edit form.
// GET /admin/hapus/{hapuID}/edit
func (h *Handler) ServeEditForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hapu, ok := h.loadHapu(ctx, w, r)
	if !ok {
		return
	}
	if d := unitpolicy.CanManageHapu(r, hapu); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/hapus")
		return
	}

	vm := formVM{
		HapuID:      hapu.ID.Hex(),
		IwiID:       hapu.IwiID.Hex(),
		Name:        hapu.Name,
		Description: hapu.Description,
		IsEdit:      true,
	}
	formutil.SetBase(&vm.Base, r, "Edit hapū", "/admin/hapus")
	templates.Render(w, r, "hapu_form", vm)
}

// HandleUpdate saves name and description changes.
// POST /admin/hapus/{hapuID}/edit
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/admin/hapus")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hapu, ok := h.loadHapu(ctx, w, r)
	if !ok {
		return
	}
	if d := unitpolicy.CanManageHapu(r, hapu); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/hapus")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))

	renderWithError := func(msg string) {
		vm := formVM{HapuID: hapu.ID.Hex(), IwiID: hapu.IwiID.Hex(), Name: name, Description: description, IsEdit: true}
		formutil.SetBase(&vm.Base, r, "Edit hapū", "/admin/hapus")
		vm.SetError(msg)
		templates.Render(w, r, "hapu_form", vm)
	}

	if name == "" {
		renderWithError("A name is required.")
		return
	}

	err := hapustore.New(h.DB).Update(ctx, hapu.ID, name, description)
	if err == hapustore.ErrDuplicateHapu {
		renderWithError("This iwi already has an active hapū with this name.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to update hapu", err, "Failed to save changes.", "/admin/hapus")
		return
	}

	http.Redirect(w, r, "/admin/hapus?success=updated", http.StatusSeeOther)
}
