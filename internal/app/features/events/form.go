// internal/app/features/events/form.go
package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/eventpolicy"
	eventstore "github.com/temanawa/iwihub/internal/app/store/events"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/docfile"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/inputval"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const formTimeLayout = "2006-01-02T15:04"

type createEventInput struct {
	Title       string `validate:"required,min=5,max=200" label:"Title"`
	Description string `validate:"required,min=10,max=2000" label:"Description"`
}

type formVM struct {
	formutil.Base

	Title        string
	Description  string
	StartAt      string
	EndAt        string
	LocationType string
	Location     string
	OnlineURL    string
	Visibility   string
	IwiID        string
	HapuID       string

	Iwis  []models.Iwi
	Hapus []models.Hapu
}

// visibilityChoices loads the units the user may scope an event to.
func (h *Handler) visibilityChoices(ctx context.Context, r *http.Request) ([]models.Iwi, []models.Hapu, error) {
	if authz.IsStaff(r) {
		iwis, err := iwistore.New(h.DB).ListActive(ctx)
		if err != nil {
			return nil, nil, err
		}
		hapus, err := hapustore.New(h.DB).Find(ctx, bson.M{"is_archived": false})
		if err != nil {
			return nil, nil, err
		}
		return iwis, hapus, nil
	}

	iwis, err := iwistore.New(h.DB).GetByIDs(ctx, authz.LeaderIwiIDs(r))
	if err != nil {
		return nil, nil, err
	}
	active := iwis[:0]
	for _, iwi := range iwis {
		if !iwi.IsArchived {
			active = append(active, iwi)
		}
	}
	iwis = active
	hapuFilter := bson.M{"is_archived": false}
	iwiIDs := authz.LeaderIwiIDs(r)
	hapuIDs := authz.LeaderHapuIDs(r)
	switch {
	case len(iwiIDs) > 0 && len(hapuIDs) > 0:
		hapuFilter["$or"] = []bson.M{
			{"iwi_id": bson.M{"$in": iwiIDs}},
			{"_id": bson.M{"$in": hapuIDs}},
		}
	case len(iwiIDs) > 0:
		hapuFilter["iwi_id"] = bson.M{"$in": iwiIDs}
	default:
		hapuFilter["_id"] = bson.M{"$in": hapuIDs}
	}
	hapus, err := hapustore.New(h.DB).Find(ctx, hapuFilter)
	if err != nil {
		return nil, nil, err
	}
	return iwis, hapus, nil
}

// readAttachment pulls the optional poster or flyer from the form and
// stores it under a randomized protected path. A missing file is not
// an error.
func (h *Handler) readAttachment(ctx context.Context, r *http.Request) (storedPath, name, contentType, errMsg string) {
	file, header, err := r.FormFile("attachment")
	if err == http.ErrMissingFile {
		return "", "", "", ""
	}
	if err != nil {
		return "", "", "", "The attachment could not be read."
	}
	defer file.Close()

	ct, err := docfile.Validate(header.Filename, header.Size)
	if err != nil {
		switch err {
		case docfile.ErrTooLarge:
			return "", "", "", "The attachment must be 2 MB or smaller."
		case docfile.ErrUnsupportedType:
			return "", "", "", "The attachment must be a PDF, JPG, or PNG file."
		}
		return "", "", "", "The attachment could not be accepted."
	}

	p := docfile.AttachmentStoragePath(header.Filename)
	if err := h.Storage.Put(ctx, p, file, &storage.PutOptions{ContentType: ct}); err != nil {
		h.Log.Error("attachment upload failed", zap.Error(err))
		return "", "", "", "Failed to store the attachment. Please try again."
	}
	return p, header.Filename, ct, ""
}

// ServeNewForm renders the event creation form.
// GET /events/new
func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	if d := eventpolicy.CanCreate(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/events")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwis, hapus, err := h.visibilityChoices(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load visibility choices", err, "Failed to load the form.", "/events")
		return
	}

	vm := formVM{
		LocationType: models.LocationPhysical,
		Visibility:   models.EventPublic,
		Iwis:         iwis,
		Hapus:        hapus,
	}
	formutil.SetBase(&vm.Base, r, "New event", "/events")
	templates.Render(w, r, "event_form", vm)
}

// HandleCreate validates and stores an event. Physical events need an
// address; online events need a usable HTTP URL. The two location
// kinds are mutually exclusive.
// POST /events/new
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if d := eventpolicy.CanCreate(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/events")
		return
	}
	// Attachment limit plus slack for the text fields.
	if err := r.ParseMultipartForm(docfile.MaxSize + 512*1024); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form submission.", "/events")
		return
	}

	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/events")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := formVM{
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		StartAt:      r.FormValue("start_at"),
		EndAt:        r.FormValue("end_at"),
		LocationType: r.FormValue("location_type"),
		Location:     strings.TrimSpace(r.FormValue("location")),
		OnlineURL:    strings.TrimSpace(r.FormValue("online_url")),
		Visibility:   r.FormValue("visibility"),
		IwiID:        r.FormValue("iwi_id"),
		HapuID:       r.FormValue("hapu_id"),
	}

	renderWithError := func(msg string) {
		iwis, hapus, err := h.visibilityChoices(ctx, r)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load visibility choices", err, "Failed to load the form.", "/events")
			return
		}
		vm.Iwis = iwis
		vm.Hapus = hapus
		formutil.SetBase(&vm.Base, r, "New event", "/events")
		vm.SetError(msg)
		templates.Render(w, r, "event_form", vm)
	}

	input := createEventInput{Title: vm.Title, Description: vm.Description}
	if result := inputval.Validate(input); result.HasErrors() {
		renderWithError(result.First())
		return
	}

	startAt, err := time.ParseInLocation(formTimeLayout, vm.StartAt, time.Local)
	if err != nil {
		renderWithError("Please provide a valid start time.")
		return
	}
	endAt, err := time.ParseInLocation(formTimeLayout, vm.EndAt, time.Local)
	if err != nil {
		renderWithError("Please provide a valid end time.")
		return
	}
	startAt, endAt = startAt.UTC(), endAt.UTC()
	if !startAt.After(time.Now().UTC()) {
		renderWithError("The start time must be in the future.")
		return
	}
	if !endAt.After(startAt) {
		renderWithError("The end time must be after the start time.")
		return
	}

	e := models.Event{
		Title:       vm.Title,
		Description: vm.Description,
		StartAt:     startAt,
		EndAt:       endAt,
		Visibility:  vm.Visibility,
		CreatedByID: userID,
	}

	switch vm.LocationType {
	case models.LocationPhysical:
		if vm.Location == "" {
			renderWithError("A physical event needs a location.")
			return
		}
		e.LocationType = models.LocationPhysical
		e.Location = vm.Location
	case models.LocationOnline:
		if !urlutil.IsValidAbsHTTPURL(vm.OnlineURL) {
			renderWithError("An online event needs a valid http(s) link.")
			return
		}
		e.LocationType = models.LocationOnline
		e.OnlineURL = vm.OnlineURL
	default:
		renderWithError("Please choose a location type.")
		return
	}

	switch vm.Visibility {
	case models.EventPublic:
	case models.EventIwi:
		iwiID, err := primitive.ObjectIDFromHex(vm.IwiID)
		if err != nil {
			renderWithError("Please choose an iwi for this event.")
			return
		}
		iwi, err := iwistore.New(h.DB).GetByID(ctx, iwiID)
		if err != nil || iwi.IsArchived {
			renderWithError("That iwi is not accepting events.")
			return
		}
		if !authz.IsStaff(r) && !authz.LeadsIwi(r, iwiID) {
			renderWithError("You do not lead that iwi.")
			return
		}
		e.IwiID = &iwi.ID
	case models.EventHapu:
		hapuID, err := primitive.ObjectIDFromHex(vm.HapuID)
		if err != nil {
			renderWithError("Please choose a hapū for this event.")
			return
		}
		hapu, err := hapustore.New(h.DB).GetByID(ctx, hapuID)
		if err != nil || hapu.IsArchived {
			renderWithError("That hapū is not accepting events.")
			return
		}
		if !authz.IsStaff(r) && !authz.LeadsHapu(r, hapu.ID) && !authz.LeadsIwi(r, hapu.IwiID) {
			renderWithError("You do not lead that hapū or its iwi.")
			return
		}
		// Parent iwi rides along for iwi-leader oversight.
		e.HapuID = &hapu.ID
		e.IwiID = &hapu.IwiID
	default:
		renderWithError("Please choose who can see this event.")
		return
	}

	var errMsg string
	e.AttachmentPath, e.AttachmentName, e.AttachmentContentType, errMsg = h.readAttachment(ctx, r)
	if errMsg != "" {
		renderWithError(errMsg)
		return
	}

	created, err := eventstore.New(h.DB).Create(ctx, e)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to create event", err, "Failed to create the event.", "/events")
		return
	}

	h.Log.Info("event created",
		zap.String("event_id", created.ID.Hex()),
		zap.String("visibility", created.Visibility))
	http.Redirect(w, r, "/events/"+created.ID.Hex()+"?success=created", http.StatusSeeOther)
}
