package consultations

import (
	"testing"

	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testOptions() []models.VotingOption {
	return []models.VotingOption{
		{ID: primitive.NewObjectID(), Text: "Support"},
		{ID: primitive.NewObjectID(), Text: "Oppose"},
		{ID: primitive.NewObjectID(), Text: "Abstain"},
	}
}

func TestTallyOptions_SharesSumToHundred(t *testing.T) {
	opts := testOptions()
	counts := map[primitive.ObjectID]int64{
		opts[0].ID: 3,
		opts[1].ID: 1,
	}

	results, total := tallyOptions(opts, counts)
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}
	if len(results) != 3 {
		t.Fatalf("result rows = %d, want 3", len(results))
	}
	if results[0].Count != 3 || results[0].Percent != 75 {
		t.Errorf("first option = %d votes %.1f%%, want 3 votes 75%%", results[0].Count, results[0].Percent)
	}
	if results[2].Count != 0 || results[2].Percent != 0 {
		t.Errorf("unvoted option = %d votes %.1f%%, want 0 votes 0%%", results[2].Count, results[2].Percent)
	}

	var sum float64
	for _, res := range results {
		sum += res.Percent
	}
	if sum != 100 {
		t.Errorf("percent sum = %.4f, want 100", sum)
	}
}

func TestTallyOptions_NoVotes(t *testing.T) {
	opts := testOptions()

	results, total := tallyOptions(opts, map[primitive.ObjectID]int64{})
	if total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
	for i, res := range results {
		if res.Count != 0 || res.Percent != 0 {
			t.Errorf("option %d = %d votes %.1f%%, want all zero", i, res.Count, res.Percent)
		}
	}
}
