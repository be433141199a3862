// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/userpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/paging"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listRow struct {
	User     models.User
	IwiName  string
	HapuName string
}

type listVM struct {
	viewdata.BaseVM

	Rows        []listRow
	StateFilter string
	States      []string
	Page        paging.Page
}

// ServeList shows members, filterable by verification state. Staff see
// everyone; hapū leaders see only their own hapū's members.
// GET /admin/users?state=...
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if d := userpolicy.CanListUsers(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := bson.M{}
	state := query.Get(r, "state")
	if state != "" {
		filter["state"] = state
	}
	if !authz.IsStaff(r) {
		filter["hapu_id"] = bson.M{"$in": authz.LeaderHapuIDs(r)}
	}

	start := paging.ParseStart(r)
	skip, limit := paging.Window(start)
	opts := options.Find().
		SetSort(bson.D{{Key: "registered_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	members, err := userstore.New(h.DB).Find(ctx, filter, opts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list users", err, "Failed to load members.", "/dashboard")
		return
	}
	page := paging.Trim(&members, start)

	rows, err := h.buildRows(ctx, members)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to resolve affiliations", err, "Failed to load members.", "/dashboard")
		return
	}

	vm := listVM{
		BaseVM:      viewdata.NewBaseVM(r, "Members", "/dashboard"),
		Rows:        rows,
		StateFilter: state,
		States:      models.VerificationStates,
		Page:        page,
	}
	templates.Render(w, r, "user_list", vm)
}

// buildRows joins member records with their iwi and hapū names.
func (h *Handler) buildRows(ctx context.Context, members []models.User) ([]listRow, error) {
	var iwiIDs, hapuIDs []primitive.ObjectID
	seenIwi := map[primitive.ObjectID]bool{}
	seenHapu := map[primitive.ObjectID]bool{}
	for _, m := range members {
		if m.IwiID != nil && !seenIwi[*m.IwiID] {
			seenIwi[*m.IwiID] = true
			iwiIDs = append(iwiIDs, *m.IwiID)
		}
		if m.HapuID != nil && !seenHapu[*m.HapuID] {
			seenHapu[*m.HapuID] = true
			hapuIDs = append(hapuIDs, *m.HapuID)
		}
	}

	iwis, err := iwistore.New(h.DB).GetByIDs(ctx, iwiIDs)
	if err != nil {
		return nil, err
	}
	hapus, err := hapustore.New(h.DB).GetByIDs(ctx, hapuIDs)
	if err != nil {
		return nil, err
	}

	iwiNames := make(map[primitive.ObjectID]string, len(iwis))
	for _, iwi := range iwis {
		iwiNames[iwi.ID] = iwi.Name
	}
	hapuNames := make(map[primitive.ObjectID]string, len(hapus))
	for _, hp := range hapus {
		hapuNames[hp.ID] = hp.Name
	}

	rows := make([]listRow, 0, len(members))
	for _, m := range members {
		row := listRow{User: m}
		if m.IwiID != nil {
			row.IwiName = iwiNames[*m.IwiID]
		}
		if m.HapuID != nil {
			row.HapuName = hapuNames[*m.HapuID]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
