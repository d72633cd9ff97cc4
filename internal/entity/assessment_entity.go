package entity

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentDecision string

const (
	AssessmentDecisionNone     AssessmentDecision = ""
	AssessmentDecisionAccepted AssessmentDecision = "accepted"
	AssessmentDecisionRejected AssessmentDecision = "rejected"
)

type Assessment struct {
	Id                 uuid.UUID
	ApplicationId      uuid.UUID
	AllocatedToUserId  *uuid.UUID
	CreatedAt          time.Time
	SubmittedAt        *time.Time
	Decision           AssessmentDecision
	RejectionRationale string
	ReallocatedAt      *time.Time
	IsWithdrawn        bool
	ClarificationNotes []ClarificationNote
}

type ClarificationNote struct {
	Id                 uuid.UUID
	AssessmentId       uuid.UUID
	CreatedByUserId    uuid.UUID
	CreatedAt          time.Time
	Query              string
	Response           string
	ResponseReceivedOn *time.Time
}

func (n ClarificationNote) IsAnswered() bool {
	return n.ResponseReceivedOn != nil
}

// HasUnansweredNote reports whether the assessor is still waiting on further information.
func (a *Assessment) HasUnansweredNote() bool {
	for _, n := range a.ClarificationNotes {
		if !n.IsAnswered() {
			return true
		}
	}
	return false
}
