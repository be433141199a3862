// internal/app/features/users/document.go
package users

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/userpolicy"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeDocument streams the member's citizenship document to whoever is
// allowed to verify them. The file never gets a public URL.
// GET /admin/users/{userID}/document
func (h *Handler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	member, ok := h.loadMember(ctx, w, r)
	if !ok {
		return
	}
	if d := userpolicy.CanViewDocument(r, member); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/users")
		return
	}
	if member.DocumentPath == "" {
		uierrors.RenderError(w, r, "This member has no citizenship document on file.", "/admin/users/"+member.ID.Hex())
		return
	}

	filename := member.DocumentName
	if filename == "" {
		filename = "document"
	}
	contentDisposition := "inline; filename=\"" + filename + "\""

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(member.DocumentPath)
		if err != nil {
			h.Log.Error("error resolving document path",
				zap.Error(err),
				zap.String("path", member.DocumentPath))
			uierrors.RenderError(w, r, "Failed to locate the document.", "/admin/users")
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		if member.DocumentContentType != "" {
			w.Header().Set("Content-Type", member.DocumentContentType)
		}
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, member.DocumentPath, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("error generating signed URL",
			zap.Error(err),
			zap.String("path", member.DocumentPath))
		uierrors.RenderError(w, r, "Failed to open the document.", "/admin/users")
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
