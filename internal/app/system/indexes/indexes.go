// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Several invariants live here rather than in application code:
  - one account per email (users.email_ci unique)
  - one vote per user per proposal (votes unique pair)
  - one acknowledgment per user per notice
  - one participation per user per event
  - active org-unit names unique (partial indexes scoped to is_archived=false,
    so archived units free their name for reuse)
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for name, fn := range map[string]func(context.Context, *mongo.Database) error{
		"users":                 ensureUsers,
		"iwis":                  ensureIwis,
		"hapus":                 ensureHapus,
		"iwi_leaderships":       ensureIwiLeaderships,
		"hapu_leaderships":      ensureHapuLeaderships,
		"proposals":             ensureProposals,
		"votes":                 ensureVotes,
		"proposal_comments":     ensureComments,
		"notices":               ensureNotices,
		"notice_acks":           ensureNoticeAcks,
		"events":                ensureEvents,
		"event_participants":    ensureEventParticipants,
		"password_reset_tokens": ensureResetTokens,
		"login_records":         ensureLoginRecords,
	} {
		if err := fn(ctx, db); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with
// the same keys already exists under a different name.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				zap.L().Info("index exists with different options, skipping",
					zap.String("collection", coll.Name()),
					zap.String("name", name))
				continue
			}
			errs = append(errs, name+": "+err.Error())
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_email_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "registered_at", Value: -1}},
			Options: options.Index().SetName("state_registered"),
		},
		{
			Keys:    bson.D{{Key: "iwi_id", Value: 1}},
			Options: options.Index().SetName("iwi"),
		},
		{
			Keys:    bson.D{{Key: "hapu_id", Value: 1}},
			Options: options.Index().SetName("hapu"),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("name_keyset"),
		},
	})
}

func ensureIwis(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("iwis"), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_active_name_ci").SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_archived": false}),
		},
		{
			Keys:    bson.D{{Key: "is_archived", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("archived_name"),
		},
	})
}

func ensureHapus(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("hapus"), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "iwi_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_active_iwi_name_ci").SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_archived": false}),
		},
		{
			Keys:    bson.D{{Key: "iwi_id", Value: 1}, {Key: "is_archived", Value: 1}},
			Options: options.Index().SetName("iwi_archived"),
		},
	})
}

func ensureIwiLeaderships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("iwi_leaderships"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "iwi_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_iwi_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user"),
		},
	})
}

func ensureHapuLeaderships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("hapu_leaderships"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "hapu_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_hapu_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user"),
		},
	})
}

func ensureProposals(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("proposals"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "start_at", Value: -1}},
			Options: options.Index().SetName("type_start"),
		},
		{
			Keys:    bson.D{{Key: "iwi_id", Value: 1}},
			Options: options.Index().SetName("iwi"),
		},
		{
			Keys:    bson.D{{Key: "hapu_id", Value: 1}},
			Options: options.Index().SetName("hapu"),
		},
		{
			Keys:    bson.D{{Key: "end_at", Value: -1}},
			Options: options.Index().SetName("end"),
		},
	})
}

func ensureVotes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("votes"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "proposal_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_proposal_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "proposal_id", Value: 1}, {Key: "option_id", Value: 1}},
			Options: options.Index().SetName("proposal_option"),
		},
	})
}

func ensureComments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("proposal_comments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "proposal_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("proposal_created"),
		},
	})
}

func ensureNotices(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notices"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: -1}},
			Options: options.Index().SetName("expires"),
		},
		{
			Keys:    bson.D{{Key: "audience", Value: 1}, {Key: "priority", Value: -1}},
			Options: options.Index().SetName("audience_priority"),
		},
	})
}

func ensureNoticeAcks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notice_acks"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "notice_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_notice_user").SetUnique(true),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "start_at", Value: 1}},
			Options: options.Index().SetName("start"),
		},
		{
			Keys:    bson.D{{Key: "visibility", Value: 1}, {Key: "start_at", Value: 1}},
			Options: options.Index().SetName("visibility_start"),
		},
	})
}

func ensureEventParticipants(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("event_participants"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_event_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user"),
		},
	})
}

func ensureLoginRecords(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("login_records"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("email_created"),
		},
		{
			// Attempt history only matters for throttling; expire after a month.
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("ttl_created").SetExpireAfterSeconds(30 * 24 * 3600),
		},
	})
}

func ensureResetTokens(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("password_reset_tokens"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("uniq_token").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_expires").SetExpireAfterSeconds(0),
		},
	})
}
