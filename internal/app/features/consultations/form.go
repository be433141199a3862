// internal/app/features/consultations/form.go
package consultations

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/consultationpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	proposalstore "github.com/temanawa/iwihub/internal/app/store/proposals"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/inputval"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// datetime-local input format
const formTimeLayout = "2006-01-02T15:04"

type createConsultationInput struct {
	Title       string `validate:"required,min=5,max=200" label:"Title"`
	Description string `validate:"required,min=10,max=2000" label:"Description"`
}

type formVM struct {
	formutil.Base

	Title             string
	Description       string
	Type              string
	IwiID             string
	HapuID            string
	StartAt           string
	EndAt             string
	OptionsText       string
	EnableComments    bool
	AnonymousFeedback bool
	IsDraft           bool

	AllowedTypes []string
	Iwis         []models.Iwi
	Hapus        []models.Hapu
}

// scopeChoices loads the iwi and hapū the user may target. Staff get
// everything active; leaders get their own units.
func (h *Handler) scopeChoices(ctx context.Context, r *http.Request) ([]models.Iwi, []models.Hapu, error) {
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

	// Iwi leaders can run hapū consultations for any hapū of their iwi;
	// hapū leaders only for the hapū they lead.
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

// ServeNewForm renders the creation form.
// GET /consultations/new
func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	if d := consultationpolicy.CanCreate(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/consultations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwis, hapus, err := h.scopeChoices(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load scope choices", err, "Failed to load the form.", "/consultations")
		return
	}

	vm := formVM{
		EnableComments: true,
		AllowedTypes:   consultationpolicy.AllowedTypes(r),
		Iwis:           iwis,
		Hapus:          hapus,
	}
	formutil.SetBase(&vm.Base, r, "New consultation", "/consultations")
	templates.Render(w, r, "consultation_form", vm)
}

// HandleCreate validates and stores a consultation. The voting window
// is fixed at creation; published consultations notify eligible
// members by email without blocking the response.
// POST /consultations/new
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if d := consultationpolicy.CanCreate(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/consultations")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/consultations")
		return
	}

	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/consultations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := formVM{
		Title:             strings.TrimSpace(r.FormValue("title")),
		Description:       strings.TrimSpace(r.FormValue("description")),
		Type:              r.FormValue("type"),
		IwiID:             r.FormValue("iwi_id"),
		HapuID:            r.FormValue("hapu_id"),
		StartAt:           r.FormValue("start_at"),
		EndAt:             r.FormValue("end_at"),
		OptionsText:       r.FormValue("options"),
		EnableComments:    r.FormValue("enable_comments") == "on",
		AnonymousFeedback: r.FormValue("anonymous_feedback") == "on",
		IsDraft:           r.FormValue("is_draft") == "on",
	}

	renderWithError := func(msg string) {
		iwis, hapus, err := h.scopeChoices(ctx, r)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load scope choices", err, "Failed to load the form.", "/consultations")
			return
		}
		vm.AllowedTypes = consultationpolicy.AllowedTypes(r)
		vm.Iwis = iwis
		vm.Hapus = hapus
		formutil.SetBase(&vm.Base, r, "New consultation", "/consultations")
		vm.SetError(msg)
		templates.Render(w, r, "consultation_form", vm)
	}

	input := createConsultationInput{Title: vm.Title, Description: vm.Description}
	if result := inputval.Validate(input); result.HasErrors() {
		renderWithError(result.First())
		return
	}

	typeAllowed := false
	for _, t := range consultationpolicy.AllowedTypes(r) {
		if t == vm.Type {
			typeAllowed = true
			break
		}
	}
	if !typeAllowed {
		renderWithError("You cannot create this type of consultation.")
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
	if endAt.Sub(startAt) < models.MinConsultationDuration {
		renderWithError("The voting window must be at least one hour.")
		return
	}

	var optTexts []string
	for _, line := range strings.Split(vm.OptionsText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			optTexts = append(optTexts, line)
		}
	}
	if len(optTexts) < 2 {
		renderWithError("At least two voting options are required, one per line.")
		return
	}
	options := make([]models.VotingOption, 0, len(optTexts))
	for _, t := range optTexts {
		options = append(options, models.VotingOption{ID: primitive.NewObjectID(), Text: t})
	}

	p := models.Proposal{
		Title:             vm.Title,
		Description:       vm.Description,
		Type:              vm.Type,
		StartAt:           startAt,
		EndAt:             endAt,
		EnableComments:    vm.EnableComments,
		AnonymousFeedback: vm.AnonymousFeedback,
		IsDraft:           vm.IsDraft,
		Options:           options,
		CreatedByID:       userID,
	}

	switch vm.Type {
	case models.ConsultationIwi:
		iwiID, err := primitive.ObjectIDFromHex(vm.IwiID)
		if err != nil {
			renderWithError("Please choose an iwi for this consultation.")
			return
		}
		iwi, err := iwistore.New(h.DB).GetByID(ctx, iwiID)
		if err != nil || iwi.IsArchived {
			renderWithError("That iwi is not accepting consultations.")
			return
		}
		if !authz.IsStaff(r) && !authz.LeadsIwi(r, iwiID) {
			renderWithError("You do not lead that iwi.")
			return
		}
		p.IwiID = &iwi.ID
	case models.ConsultationHapu:
		hapuID, err := primitive.ObjectIDFromHex(vm.HapuID)
		if err != nil {
			renderWithError("Please choose a hapū for this consultation.")
			return
		}
		hapu, err := hapustore.New(h.DB).GetByID(ctx, hapuID)
		if err != nil || hapu.IsArchived {
			renderWithError("That hapū is not accepting consultations.")
			return
		}
		if !authz.IsStaff(r) && !authz.LeadsHapu(r, hapu.ID) && !authz.LeadsIwi(r, hapu.IwiID) {
			renderWithError("You do not lead that hapū or its iwi.")
			return
		}
		// Parent iwi rides along for iwi-leader oversight.
		p.HapuID = &hapu.ID
		p.IwiID = &hapu.IwiID
	}

	created, err := proposalstore.New(h.DB).Create(ctx, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to create consultation", err, "Failed to create the consultation.", "/consultations")
		return
	}

	h.Log.Info("consultation created",
		zap.String("proposal_id", created.ID.Hex()),
		zap.String("type", created.Type),
		zap.Bool("draft", created.IsDraft))

	if !created.IsDraft {
		h.notifyMembers(ctx, created)
	}

	http.Redirect(w, r, "/consultations/"+created.ID.Hex()+"?success=created", http.StatusSeeOther)
}

// notifyMembers emails every verified member in the consultation's
// scope. Failures are logged by the mailer, never surfaced here.
func (h *Handler) notifyMembers(ctx context.Context, p models.Proposal) {
	emails, err := userstore.New(h.DB).VerifiedEmailsByScope(ctx, p.IwiID, p.HapuID)
	if err != nil {
		h.Log.Warn("failed to collect notification recipients",
			zap.String("proposal_id", p.ID.Hex()), zap.Error(err))
		return
	}
	msg := mailer.BuildConsultationEmail(mailer.ConsultationEmailData{
		SiteName:  viewdata.SiteName,
		Title:     p.Title,
		DetailURL: h.BaseURL + "/consultations/" + p.ID.Hex(),
	})
	h.Mail.SendToAllAsync(emails, msg)
}
