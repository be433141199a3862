// internal/app/features/notices/form.go
package notices

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/noticepolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	noticestore "github.com/temanawa/iwihub/internal/app/store/notices"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/docfile"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/htmlsanitize"
	"github.com/temanawa/iwihub/internal/app/system/inputval"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const formTimeLayout = "2006-01-02T15:04"

// Content bounds apply to the sanitized plain text, not the markup.
type noticeInput struct {
	Title   string `validate:"required,min=5,max=200" label:"Title"`
	Content string `validate:"required,min=10,max=2000" label:"Content"`
}

type formVM struct {
	formutil.Base

	NoticeID  string
	Title     string
	Content   string
	Audience  string
	IwiID     string
	HapuID    string
	Priority  int
	ExpiresAt string
	IsEdit    bool

	AllowedAudiences []string
	Iwis             []models.Iwi
	Hapus            []models.Hapu
}

// audienceChoices loads the iwi and hapū the user may address.
func (h *Handler) audienceChoices(ctx context.Context, r *http.Request) ([]models.Iwi, []models.Hapu, error) {
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

// ServeNewForm renders the posting form.
// GET /notices/new
func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	if d := noticepolicy.CanPost(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/notices")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwis, hapus, err := h.audienceChoices(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load audience choices", err, "Failed to load the form.", "/notices")
		return
	}

	vm := formVM{
		Priority:         5,
		AllowedAudiences: noticepolicy.AllowedAudiences(r),
		Iwis:             iwis,
		Hapus:            hapus,
	}
	formutil.SetBase(&vm.Base, r, "New notice", "/notices")
	templates.Render(w, r, "notice_form", vm)
}

// parseForm reads and validates the shared create/edit fields. The
// returned notice has no ID or creator set.
func (h *Handler) parseForm(ctx context.Context, r *http.Request, vm *formVM) (models.Notice, string) {
	vm.Title = strings.TrimSpace(r.FormValue("title"))
	vm.Content = r.FormValue("content")
	vm.Audience = r.FormValue("audience")
	vm.IwiID = r.FormValue("iwi_id")
	vm.HapuID = r.FormValue("hapu_id")
	vm.ExpiresAt = r.FormValue("expires_at")
	vm.Priority, _ = strconv.Atoi(r.FormValue("priority"))

	content := htmlsanitize.Rich(vm.Content)
	input := noticeInput{
		Title:   vm.Title,
		Content: strings.TrimSpace(htmlsanitize.Plain(content)),
	}
	if result := inputval.Validate(input); result.HasErrors() {
		return models.Notice{}, result.First()
	}

	if vm.Priority < models.MinNoticePriority || vm.Priority > models.MaxNoticePriority {
		return models.Notice{}, "Priority must be between 1 and 10."
	}

	expiresAt, err := time.ParseInLocation(formTimeLayout, vm.ExpiresAt, time.Local)
	if err != nil {
		return models.Notice{}, "Please provide a valid expiry time."
	}
	expiresAt = expiresAt.UTC()
	if !expiresAt.After(time.Now().UTC()) {
		return models.Notice{}, "The expiry must be in the future."
	}

	allowed := false
	for _, a := range noticepolicy.AllowedAudiences(r) {
		if a == vm.Audience {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.Notice{}, "You cannot address this audience."
	}

	n := models.Notice{
		Title:     vm.Title,
		Content:   content,
		Audience:  vm.Audience,
		Priority:  vm.Priority,
		ExpiresAt: expiresAt,
	}

	switch vm.Audience {
	case models.AudienceIwi:
		iwiID, err := primitive.ObjectIDFromHex(vm.IwiID)
		if err != nil {
			return models.Notice{}, "Please choose an iwi for this notice."
		}
		iwi, err := iwistore.New(h.DB).GetByID(ctx, iwiID)
		if err != nil || iwi.IsArchived {
			return models.Notice{}, "That iwi is not accepting notices."
		}
		if !authz.IsStaff(r) && !authz.LeadsIwi(r, iwiID) {
			return models.Notice{}, "You do not lead that iwi."
		}
		n.IwiID = &iwi.ID
	case models.AudienceHapu:
		hapuID, err := primitive.ObjectIDFromHex(vm.HapuID)
		if err != nil {
			return models.Notice{}, "Please choose a hapū for this notice."
		}
		hapu, err := hapustore.New(h.DB).GetByID(ctx, hapuID)
		if err != nil || hapu.IsArchived {
			return models.Notice{}, "That hapū is not accepting notices."
		}
		if !authz.IsStaff(r) && !authz.LeadsHapu(r, hapu.ID) && !authz.LeadsIwi(r, hapu.IwiID) {
			return models.Notice{}, "You do not lead that hapū or its iwi."
		}
		// Parent iwi rides along for iwi-leader oversight.
		n.HapuID = &hapu.ID
		n.IwiID = &hapu.IwiID
	}

	return n, ""
}

// readAttachment pulls the optional attachment from the form and
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

// HandleCreate posts a notice. Content is sanitized to the rich-text
// whitelist before it is stored.
// POST /notices/new
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if d := noticepolicy.CanPost(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/notices")
		return
	}
	// Attachment limit plus slack for the text fields.
	if err := r.ParseMultipartForm(docfile.MaxSize + 512*1024); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form submission.", "/notices")
		return
	}

	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/notices")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var vm formVM
	renderWithError := func(msg string) {
		iwis, hapus, err := h.audienceChoices(ctx, r)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load audience choices", err, "Failed to load the form.", "/notices")
			return
		}
		vm.AllowedAudiences = noticepolicy.AllowedAudiences(r)
		vm.Iwis = iwis
		vm.Hapus = hapus
		formutil.SetBase(&vm.Base, r, "New notice", "/notices")
		vm.SetError(msg)
		templates.Render(w, r, "notice_form", vm)
	}

	n, errMsg := h.parseForm(ctx, r, &vm)
	if errMsg != "" {
		renderWithError(errMsg)
		return
	}
	n.CreatedByID = userID

	n.AttachmentPath, n.AttachmentName, n.AttachmentContentType, errMsg = h.readAttachment(ctx, r)
	if errMsg != "" {
		renderWithError(errMsg)
		return
	}

	created, err := noticestore.New(h.DB).Create(ctx, n)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to create notice", err, "Failed to post the notice.", "/notices")
		return
	}

	h.Log.Info("notice posted",
		zap.String("notice_id", created.ID.Hex()),
		zap.String("audience", created.Audience),
		zap.Int("priority", created.Priority))
	http.Redirect(w, r, "/notices/"+created.ID.Hex()+"?success=created", http.StatusSeeOther)
}

// ServeEditForm renders the edit form for a managed notice.
// GET /notices/{noticeID}/edit
func (h *Handler) ServeEditForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, ok := h.loadNotice(ctx, w, r)
	if !ok {
		return
	}
	if d := noticepolicy.CanManage(r, n); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/notices")
		return
	}

	iwis, hapus, err := h.audienceChoices(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load audience choices", err, "Failed to load the form.", "/notices")
		return
	}

	vm := formVM{
		NoticeID:         n.ID.Hex(),
		Title:            n.Title,
		Content:          n.Content,
		Audience:         n.Audience,
		Priority:         n.Priority,
		ExpiresAt:        n.ExpiresAt.Local().Format(formTimeLayout),
		IsEdit:           true,
		AllowedAudiences: noticepolicy.AllowedAudiences(r),
		Iwis:             iwis,
		Hapus:            hapus,
	}
	if n.IwiID != nil {
		vm.IwiID = n.IwiID.Hex()
	}
	if n.HapuID != nil {
		vm.HapuID = n.HapuID.Hex()
	}
	formutil.SetBase(&vm.Base, r, "Edit notice", "/notices/"+n.ID.Hex())
	templates.Render(w, r, "notice_form", vm)
}

// HandleUpdate saves changes to a managed notice.
// POST /notices/{noticeID}/edit
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(docfile.MaxSize + 512*1024); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form submission.", "/notices")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, ok := h.loadNotice(ctx, w, r)
	if !ok {
		return
	}
	if d := noticepolicy.CanManage(r, existing); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/notices")
		return
	}

	vm := formVM{NoticeID: existing.ID.Hex(), IsEdit: true}
	renderWithError := func(msg string) {
		iwis, hapus, err := h.audienceChoices(ctx, r)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load audience choices", err, "Failed to load the form.", "/notices")
			return
		}
		vm.AllowedAudiences = noticepolicy.AllowedAudiences(r)
		vm.Iwis = iwis
		vm.Hapus = hapus
		formutil.SetBase(&vm.Base, r, "Edit notice", "/notices/"+existing.ID.Hex())
		vm.SetError(msg)
		templates.Render(w, r, "notice_form", vm)
	}

	n, errMsg := h.parseForm(ctx, r, &vm)
	if errMsg != "" {
		renderWithError(errMsg)
		return
	}

	// A new upload replaces the stored attachment; otherwise the
	// existing one is carried over.
	newPath, newName, newCT, errMsg := h.readAttachment(ctx, r)
	if errMsg != "" {
		renderWithError(errMsg)
		return
	}
	if newPath != "" {
		if existing.AttachmentPath != "" {
			if err := h.Storage.Delete(ctx, existing.AttachmentPath); err != nil {
				h.Log.Warn("failed to delete replaced attachment",
					zap.String("path", existing.AttachmentPath), zap.Error(err))
			}
		}
		n.AttachmentPath, n.AttachmentName, n.AttachmentContentType = newPath, newName, newCT
	} else {
		n.AttachmentPath = existing.AttachmentPath
		n.AttachmentName = existing.AttachmentName
		n.AttachmentContentType = existing.AttachmentContentType
	}

	if err := noticestore.New(h.DB).Update(ctx, existing.ID, n); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to update notice", err, "Failed to save changes.", "/notices")
		return
	}

	http.Redirect(w, r, "/notices/"+existing.ID.Hex()+"?success=updated", http.StatusSeeOther)
}
