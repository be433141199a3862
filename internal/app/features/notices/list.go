// internal/app/features/notices/list.go
package notices

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/temanawa/iwihub/internal/app/policy/noticepolicy"
	ackstore "github.com/temanawa/iwihub/internal/app/store/noticeacks"
	noticestore "github.com/temanawa/iwihub/internal/app/store/notices"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listRow struct {
	Notice       models.Notice
	Acknowledged bool
}

type listVM struct {
	viewdata.BaseVM

	Rows           []listRow
	CanPost        bool
	AudienceFilter string
	Audiences      []string
}

// ServeList shows the active notices addressed to the user, highest
// priority first, optionally narrowed by audience or unit.
// GET /notices?audience=...&iwi_id=...&hapu_id=...
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwiID, hapuID := authz.UserScope(r)
	filter := noticestore.VisibleFilter(iwiID, hapuID, authz.LeaderIwiIDs(r), authz.LeaderHapuIDs(r))
	if authz.IsStaff(r) {
		// Staff see every active notice regardless of audience.
		filter = bson.M{}
	}
	filter["expires_at"] = bson.M{"$gt": time.Now().UTC()}

	audience := query.Get(r, "audience")
	if audience != "" {
		filter["audience"] = audience
	}
	if hex := query.Get(r, "iwi_id"); hex != "" {
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			filter["iwi_id"] = id
		}
	}
	if hex := query.Get(r, "hapu_id"); hex != "" {
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			filter["hapu_id"] = id
		}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "created_at", Value: -1},
	})
	notices, err := noticestore.New(h.DB).Find(ctx, filter, opts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list notices", err, "Failed to load notices.", "/dashboard")
		return
	}

	vm := listVM{
		BaseVM:         viewdata.NewBaseVM(r, "Notices", "/dashboard"),
		CanPost:        noticepolicy.CanPost(r).Allowed,
		AudienceFilter: audience,
		Audiences:      []string{models.AudienceAll, models.AudienceIwi, models.AudienceHapu},
	}

	_, userID, signedIn := authz.UserCtx(r)
	acks := ackstore.New(h.DB)
	for _, n := range notices {
		row := listRow{Notice: n}
		if signedIn {
			acked, err := acks.HasAcknowledged(ctx, n.ID, userID)
			if err != nil {
				h.ErrLog.LogServerError(w, r, "failed to check acknowledgment", err, "Failed to load notices.", "/dashboard")
				return
			}
			row.Acknowledged = acked
		}
		vm.Rows = append(vm.Rows, row)
	}

	templates.Render(w, r, "notice_list", vm)
}
