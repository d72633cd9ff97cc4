package entity

import "github.com/google/uuid"

// WithdrawableType names the level at which a withdrawal was triggered.
type WithdrawableType string

const (
	WithdrawableApplication          WithdrawableType = "application"
	WithdrawablePlacementApplication WithdrawableType = "placement_application"
	WithdrawablePlacementRequest     WithdrawableType = "placement_request"
	WithdrawableBooking              WithdrawableType = "booking"
)

type UserRole string

const (
	UserRoleApplicant       UserRole = "applicant"
	UserRoleAssessor        UserRole = "assessor"
	UserRoleMatcher         UserRole = "matcher"
	UserRoleWorkflowManager UserRole = "workflow_manager"
	UserRoleManager         UserRole = "manager"
)

// Actor is the user on whose behalf a transition runs.
type Actor struct {
	Id    uuid.UUID
	Roles []UserRole
}

func (a Actor) HasRole(role UserRole) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithdrawalContext is transient. It carries who triggered a withdrawal and at which level, and
// is passed unchanged down the cascade so every cancellation records the originating reason.
type WithdrawalContext struct {
	TriggeringUser       Actor
	TriggeringEntityType WithdrawableType
}
