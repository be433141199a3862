// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateIwi creates an active test iwi with the given name.
func (f *Fixtures) CreateIwi(ctx context.Context, name string) models.Iwi {
	f.t.Helper()

	now := time.Now().UTC()
	iwi := models.Iwi{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test iwi description",
		IsArchived:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("iwis").InsertOne(ctx, iwi); err != nil {
		f.t.Fatalf("failed to create test iwi: %v", err)
	}
	return iwi
}

// CreateArchivedIwi creates an archived test iwi.
func (f *Fixtures) CreateArchivedIwi(ctx context.Context, name string, archivedBy primitive.ObjectID) models.Iwi {
	f.t.Helper()

	now := time.Now().UTC()
	iwi := models.Iwi{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		IsArchived:    true,
		ArchivedAt:    &now,
		ArchivedByID:  &archivedBy,
		ArchiveReason: "test archive",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("iwis").InsertOne(ctx, iwi); err != nil {
		f.t.Fatalf("failed to create archived test iwi: %v", err)
	}
	return iwi
}

// CreateHapu creates an active test hapū under the given iwi.
func (f *Fixtures) CreateHapu(ctx context.Context, name string, iwiID primitive.ObjectID) models.Hapu {
	f.t.Helper()

	now := time.Now().UTC()
	hapu := models.Hapu{
		ID:        primitive.NewObjectID(),
		IwiID:     iwiID,
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("hapus").InsertOne(ctx, hapu); err != nil {
		f.t.Fatalf("failed to create test hapū: %v", err)
	}
	return hapu
}

// CreateUser creates a verified test user affiliated with the given units.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string, iwiID, hapuID *primitive.ObjectID) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, models.StateVerified, false, iwiID, hapuID)
}

// CreatePendingUser creates a test user awaiting verification.
func (f *Fixtures) CreatePendingUser(ctx context.Context, fullName, email string, iwiID, hapuID *primitive.ObjectID) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, models.StatePending, false, iwiID, hapuID)
}

// CreateStaff creates a verified portal administrator.
func (f *Fixtures) CreateStaff(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, models.StateVerified, true, nil, nil)
}

func (f *Fixtures) createUser(ctx context.Context, fullName, email, state string, staff bool, iwiID, hapuID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtest",
		IwiID:        iwiID,
		HapuID:       hapuID,
		IsStaff:      staff,
		State:        state,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateIwiLeadership links a user as leader of an iwi.
func (f *Fixtures) CreateIwiLeadership(ctx context.Context, iwiID, userID primitive.ObjectID) models.IwiLeadership {
	f.t.Helper()

	l := models.IwiLeadership{
		ID:          primitive.NewObjectID(),
		IwiID:       iwiID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
		CreatedByID: userID,
	}
	if _, err := f.db.Collection("iwi_leaderships").InsertOne(ctx, l); err != nil {
		f.t.Fatalf("failed to create test iwi leadership: %v", err)
	}
	return l
}

// CreateHapuLeadership links a user as leader of a hapū.
func (f *Fixtures) CreateHapuLeadership(ctx context.Context, hapuID, userID primitive.ObjectID) models.HapuLeadership {
	f.t.Helper()

	l := models.HapuLeadership{
		ID:          primitive.NewObjectID(),
		HapuID:      hapuID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
		CreatedByID: userID,
	}
	if _, err := f.db.Collection("hapu_leaderships").InsertOne(ctx, l); err != nil {
		f.t.Fatalf("failed to create test hapū leadership: %v", err)
	}
	return l
}

// CreateProposal creates a public proposal with two options, active for
// the next hour.
func (f *Fixtures) CreateProposal(ctx context.Context, title string, createdBy primitive.ObjectID) models.Proposal {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Proposal{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "Test proposal description",
		Type:        models.ConsultationPublic,
		StartAt:     now.Add(-time.Minute),
		EndAt:       now.Add(time.Hour),
		Options: []models.VotingOption{
			{ID: primitive.NewObjectID(), Text: "Support"},
			{ID: primitive.NewObjectID(), Text: "Oppose"},
		},
		CreatedByID: createdBy,
		CreatedAt:   now,
	}
	if _, err := f.db.Collection("proposals").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test proposal: %v", err)
	}
	return p
}

// CreateNotice creates an ALL-audience notice expiring in one day.
func (f *Fixtures) CreateNotice(ctx context.Context, title string, createdBy primitive.ObjectID) models.Notice {
	f.t.Helper()

	now := time.Now().UTC()
	n := models.Notice{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Content:     "<p>Test notice content</p>",
		Audience:    models.AudienceAll,
		Priority:    5,
		ExpiresAt:   now.Add(24 * time.Hour),
		CreatedByID: createdBy,
		CreatedAt:   now,
	}
	if _, err := f.db.Collection("notices").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notice: %v", err)
	}
	return n
}

// CreateEvent creates a public physical event starting tomorrow.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, createdBy primitive.ObjectID) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Event{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Description:  "Test event description",
		StartAt:      now.Add(24 * time.Hour),
		EndAt:        now.Add(26 * time.Hour),
		LocationType: models.LocationPhysical,
		Location:     "Test Marae",
		Visibility:   models.EventPublic,
		CreatedByID:  createdBy,
		CreatedAt:    now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return e
}
