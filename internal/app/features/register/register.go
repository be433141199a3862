// internal/app/features/register/register.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authutil"
	"github.com/temanawa/iwihub/internal/app/system/docfile"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/inputval"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// registerInput defines validation rules for a new registration.
type registerInput struct {
	FullName string `validate:"required,min=2,max=100" label:"Full name"`
	Email    string `validate:"required,email,max=254" label:"Email"`
	Password string `validate:"required,min=8,max=128" label:"Password"`
	IwiID    string `validate:"required" label:"Iwi"`
}

// ServeForm renders the registration form.
// GET /register
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	iwis, err := iwistore.New(h.DB).ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load iwi list", err, "Failed to load the registration form.", "/")
		return
	}

	vm := formVM{Iwis: iwis}
	formutil.SetBase(&vm.Base, r, "Register", "/")
	templates.Render(w, r, "register", vm)
}

// HandleSubmit processes a registration: validates the form, stores
// the citizenship document under a randomized protected path, and
// creates the account in pending state.
// POST /register
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	// Document limit plus slack for the text fields.
	if err := r.ParseMultipartForm(docfile.MaxSize + 512*1024); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form submission.", "/register")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")
	iwiHex := strings.TrimSpace(r.FormValue("iwi_id"))
	hapuHex := strings.TrimSpace(r.FormValue("hapu_id"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	iwis, err := iwistore.New(h.DB).ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load iwi list", err, "Failed to process your registration.", "/register")
		return
	}

	renderWithError := func(msg string) {
		vm := formVM{
			FullName: fullName,
			Email:    email,
			IwiID:    iwiHex,
			HapuID:   hapuHex,
			Iwis:     iwis,
		}
		formutil.SetBase(&vm.Base, r, "Register", "/")
		vm.SetError(msg)
		templates.Render(w, r, "register", vm)
	}

	input := registerInput{FullName: fullName, Email: email, Password: password, IwiID: iwiHex}
	if result := inputval.Validate(input); result.HasErrors() {
		renderWithError(result.First())
		return
	}
	if password != confirm {
		renderWithError("Passwords do not match.")
		return
	}

	if !inputval.IsValidObjectID(iwiHex) {
		renderWithError("Please select your iwi.")
		return
	}
	iwiID, _ := primitive.ObjectIDFromHex(iwiHex)
	iwi, err := iwistore.New(h.DB).GetByID(ctx, iwiID)
	if err != nil || iwi.IsArchived {
		renderWithError("Please select your iwi.")
		return
	}

	var hapuID *primitive.ObjectID
	if hapuHex != "" {
		if !inputval.IsValidObjectID(hapuHex) {
			renderWithError("Please select a valid hapū.")
			return
		}
		id, _ := primitive.ObjectIDFromHex(hapuHex)
		hapu, err := hapustore.New(h.DB).GetByID(ctx, id)
		if err != nil || hapu.IsArchived || hapu.IwiID != iwiID {
			renderWithError("Please select a hapū that belongs to your iwi.")
			return
		}
		hapuID = &id
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		renderWithError("A citizenship document is required.")
		return
	}
	defer file.Close()

	contentType, err := docfile.Validate(header.Filename, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, docfile.ErrTooLarge):
			renderWithError("The document must be 2 MB or smaller.")
		case errors.Is(err, docfile.ErrUnsupportedType):
			renderWithError("The document must be a PDF, JPG, or PNG file.")
		default:
			renderWithError("The document could not be accepted.")
		}
		return
	}

	docPath := docfile.StoragePath(header.Filename)
	if err := h.Storage.Put(ctx, docPath, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.ErrLog.LogServerError(w, r, "document upload failed", err, "Failed to store your document. Please try again.", "/register")
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "password hash failed", err, "Failed to process your registration.", "/register")
		return
	}

	user := models.User{
		FullName:            fullName,
		Email:               email,
		PasswordHash:        hash,
		IwiID:               &iwiID,
		HapuID:              hapuID,
		DocumentPath:        docPath,
		DocumentName:        header.Filename,
		DocumentContentType: contentType,
	}

	created, err := userstore.New(h.DB).Create(ctx, user)
	if err != nil {
		// Orphaned uploads are removed so retries do not accumulate files.
		if delErr := h.Storage.Delete(ctx, docPath); delErr != nil {
			h.Log.Warn("failed to clean up document after create error",
				zap.String("path", docPath), zap.Error(delErr))
		}
		if err == userstore.ErrDuplicateEmail {
			renderWithError("This email is already registered.")
			return
		}
		h.ErrLog.LogServerError(w, r, "failed to create user", err, "Failed to process your registration.", "/register")
		return
	}

	h.Log.Info("member registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("iwi_id", iwiID.Hex()))

	welcome := mailer.BuildRegistrationEmail(mailer.RegistrationEmailData{
		SiteName: viewdata.SiteName,
		FullName: fullName,
	})
	welcome.To = email
	h.Mail.SendAsync(welcome)

	http.Redirect(w, r, "/login?success=registered", http.StatusSeeOther)
}
