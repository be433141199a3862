// internal/app/features/consultations/results.go
package consultations

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	votestore "github.com/temanawa/iwihub/internal/app/store/votes"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type optionResult struct {
	Text    string
	Count   int64
	Percent float64
}

// tallyOptions pairs each option with its count and its share of the
// total. With no votes cast every share is zero.
func tallyOptions(options []models.VotingOption, counts map[primitive.ObjectID]int64) ([]optionResult, int64) {
	var total int64
	for _, n := range counts {
		total += n
	}

	results := make([]optionResult, 0, len(options))
	for _, opt := range options {
		res := optionResult{Text: opt.Text, Count: counts[opt.ID]}
		if total > 0 {
			res.Percent = float64(res.Count) / float64(total) * 100
		}
		results = append(results, res)
	}
	return results, total
}

type resultsVM struct {
	viewdata.BaseVM

	Proposal models.Proposal
	Results  []optionResult
	Total    int64
}

// ServeResults shows the tally. Results stay hidden while voting is
// open; visitors are sent back to the detail page until the window
// closes.
// GET /consultations/{proposalID}/results
func (h *Handler) ServeResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProposal(ctx, w, r)
	if !ok {
		return
	}

	if p.State(time.Now().UTC()) != models.ProposalClosed {
		http.Redirect(w, r, "/consultations/"+p.ID.Hex(), http.StatusSeeOther)
		return
	}

	counts, err := votestore.New(h.DB).CountByOption(ctx, p.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to tally votes", err, "Failed to load the results.", "/consultations")
		return
	}

	results, total := tallyOptions(p.Options, counts)

	vm := resultsVM{
		BaseVM:   viewdata.NewBaseVM(r, p.Title+" - results", "/consultations/"+p.ID.Hex()),
		Proposal: p,
		Results:  results,
		Total:    total,
	}
	templates.Render(w, r, "consultation_results", vm)
}
