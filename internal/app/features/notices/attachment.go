// internal/app/features/notices/attachment.go
package notices

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeAttachment streams the notice attachment to anyone allowed to
// read the notice. The file never gets a public URL.
// GET /notices/{noticeID}/attachment
func (h *Handler) ServeAttachment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, ok := h.loadNotice(ctx, w, r)
	if !ok {
		return
	}
	if n.AttachmentPath == "" {
		uierrors.RenderError(w, r, "This notice has no attachment.", "/notices/"+n.ID.Hex())
		return
	}

	filename := n.AttachmentName
	if filename == "" {
		filename = "attachment"
	}
	contentDisposition := "inline; filename=\"" + filename + "\""

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(n.AttachmentPath)
		if err != nil {
			h.Log.Error("error resolving attachment path",
				zap.Error(err),
				zap.String("path", n.AttachmentPath))
			uierrors.RenderError(w, r, "Failed to locate the attachment.", "/notices")
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		if n.AttachmentContentType != "" {
			w.Header().Set("Content-Type", n.AttachmentContentType)
		}
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, n.AttachmentPath, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("error generating signed URL",
			zap.Error(err),
			zap.String("path", n.AttachmentPath))
		uierrors.RenderError(w, r, "Failed to open the attachment.", "/notices")
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
