// internal/app/features/events/attachment.go
package events

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeAttachment streams the event attachment to anyone allowed to
// see the event. The file never gets a public URL.
// GET /events/{eventID}/attachment
func (h *Handler) ServeAttachment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	e, ok := h.loadEvent(ctx, w, r)
	if !ok {
		return
	}
	if e.AttachmentPath == "" {
		uierrors.RenderError(w, r, "This event has no attachment.", "/events/"+e.ID.Hex())
		return
	}

	filename := e.AttachmentName
	if filename == "" {
		filename = "attachment"
	}
	contentDisposition := "inline; filename=\"" + filename + "\""

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(e.AttachmentPath)
		if err != nil {
			h.Log.Error("error resolving attachment path",
				zap.Error(err),
				zap.String("path", e.AttachmentPath))
			uierrors.RenderError(w, r, "Failed to locate the attachment.", "/events")
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		if e.AttachmentContentType != "" {
			w.Header().Set("Content-Type", e.AttachmentContentType)
		}
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, e.AttachmentPath, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("error generating signed URL",
			zap.Error(err),
			zap.String("path", e.AttachmentPath))
		uierrors.RenderError(w, r, "Failed to open the attachment.", "/events")
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
