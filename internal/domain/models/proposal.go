// internal/domain/models/proposal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Consultation scope types.
const (
	ConsultationPublic = "public"
	ConsultationIwi    = "iwi"
	ConsultationHapu   = "hapu"
)

// Proposal lifecycle states derived from the time window. Draft proposals
// are invisible to members regardless of the window.
const (
	ProposalDraft     = "draft"
	ProposalScheduled = "scheduled"
	ProposalActive    = "active"
	ProposalClosed    = "closed"
)

// MinConsultationDuration is the shortest allowed voting window.
const MinConsultationDuration = time.Hour

// VotingOption is one selectable answer on a proposal. Options are
// created with the proposal and never change afterwards, so they are
// embedded on the proposal document.
type VotingOption struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Text string             `bson:"text" json:"text"`
}

// Proposal is a consultation put to members for voting within a fixed
// time window. The window is immutable once the proposal is created.
type Proposal struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Type        string              `bson:"type" json:"type"` // public | iwi | hapu
	IwiID       *primitive.ObjectID `bson:"iwi_id,omitempty" json:"iwi_id,omitempty"`
	HapuID      *primitive.ObjectID `bson:"hapu_id,omitempty" json:"hapu_id,omitempty"`

	StartAt time.Time `bson:"start_at" json:"start_at"`
	EndAt   time.Time `bson:"end_at" json:"end_at"`

	EnableComments    bool `bson:"enable_comments" json:"enable_comments"`
	AnonymousFeedback bool `bson:"anonymous_feedback" json:"anonymous_feedback"`
	IsDraft           bool `bson:"is_draft" json:"is_draft"`

	Options []VotingOption `bson:"options" json:"options"`

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// State returns the lifecycle state of the proposal at the given time.
func (p Proposal) State(now time.Time) string {
	switch {
	case p.IsDraft:
		return ProposalDraft
	case now.Before(p.StartAt):
		return ProposalScheduled
	case now.After(p.EndAt):
		return ProposalClosed
	default:
		return ProposalActive
	}
}

// Vote records one user's choice on a proposal. The (proposal, user)
// pair is unique at the database level; that index, not an application
// check, is what enforces vote-once under concurrent submissions.
type Vote struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProposalID primitive.ObjectID `bson:"proposal_id" json:"proposal_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	OptionID   primitive.ObjectID `bson:"option_id" json:"option_id"`
	VotedAt    time.Time          `bson:"voted_at" json:"voted_at"`
}

// Comment is member feedback on a proposal. When the proposal requires
// anonymous feedback the user reference is nil at write time, whoever
// submitted it. Comments start unapproved.
type Comment struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProposalID primitive.ObjectID  `bson:"proposal_id" json:"proposal_id"`
	UserID     *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Text       string              `bson:"text" json:"text"`
	IsApproved bool                `bson:"is_approved" json:"is_approved"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}
