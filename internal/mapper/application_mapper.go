package mapper

import (
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/model"
)

type ApplicationMapper struct{}

func NewApplicationMapper() *ApplicationMapper {
	return &ApplicationMapper{}
}

func (m *ApplicationMapper) ToEntity(a *model.Application) *entity.Application {
	if a == nil {
		return nil
	}

	application := &entity.Application{
		Id:                    a.Id,
		Kind:                  entity.ServiceKind(a.Kind),
		Crn:                   a.Crn,
		CreatedByUserId:       a.CreatedByUserId,
		CreatedAt:             a.CreatedAt,
		SubmittedAt:           a.SubmittedAt,
		IsWithdrawn:           a.IsWithdrawn,
		WithdrawalReason:      entity.WithdrawalReason(a.WithdrawalReason),
		OtherWithdrawalReason: a.OtherWithdrawalReason,
		IsInapplicable:        a.IsInapplicable,
	}

	switch application.Kind {
	case entity.ServiceKindApprovedPremises:
		application.ApprovedPremises = &entity.ApprovedPremisesDetails{
			ApType:                 a.ApType,
			IsWomensApplication:    a.IsWomensApplication,
			IsEmergencyApplication: a.IsEmergencyApplication,
			ArrivalDate:            a.ArrivalDate,
		}
	case entity.ServiceKindTemporaryAccommodation:
		application.TemporaryAccommodation = &entity.TemporaryAccommodationDetails{
			ProbationRegion:           a.ProbationRegion,
			DutyToReferSubmissionDate: a.DutyToReferSubmissionDate,
		}
	}

	return application
}

func (m *ApplicationMapper) ToModel(a *entity.Application) *model.Application {
	if a == nil {
		return nil
	}

	row := &model.Application{
		Id:                    a.Id,
		Kind:                  string(a.Kind),
		Crn:                   a.Crn,
		CreatedByUserId:       a.CreatedByUserId,
		CreatedAt:             a.CreatedAt,
		SubmittedAt:           a.SubmittedAt,
		IsWithdrawn:           a.IsWithdrawn,
		WithdrawalReason:      string(a.WithdrawalReason),
		OtherWithdrawalReason: a.OtherWithdrawalReason,
		IsInapplicable:        a.IsInapplicable,
	}
	if ap := a.ApprovedPremises; ap != nil {
		row.ApType = ap.ApType
		row.IsWomensApplication = ap.IsWomensApplication
		row.IsEmergencyApplication = ap.IsEmergencyApplication
		row.ArrivalDate = ap.ArrivalDate
	}
	if ta := a.TemporaryAccommodation; ta != nil {
		row.ProbationRegion = ta.ProbationRegion
		row.DutyToReferSubmissionDate = ta.DutyToReferSubmissionDate
	}
	return row
}

func (m *ApplicationMapper) OfflineToEntity(a *model.OfflineApplication) *entity.OfflineApplication {
	if a == nil {
		return nil
	}
	return &entity.OfflineApplication{
		Id:          a.Id,
		Kind:        entity.ServiceKind(a.Kind),
		Crn:         a.Crn,
		EventNumber: a.EventNumber,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *ApplicationMapper) OfflineToModel(a *entity.OfflineApplication) *model.OfflineApplication {
	if a == nil {
		return nil
	}
	return &model.OfflineApplication{
		Id:          a.Id,
		Kind:        string(a.Kind),
		Crn:         a.Crn,
		EventNumber: a.EventNumber,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *ApplicationMapper) AssessmentToEntity(a *model.Assessment) *entity.Assessment {
	if a == nil {
		return nil
	}

	assessment := &entity.Assessment{
		Id:                 a.Id,
		ApplicationId:      a.ApplicationId,
		AllocatedToUserId:  a.AllocatedToUserId,
		CreatedAt:          a.CreatedAt,
		SubmittedAt:        a.SubmittedAt,
		Decision:           entity.AssessmentDecision(a.Decision),
		RejectionRationale: a.RejectionRationale,
		ReallocatedAt:      a.ReallocatedAt,
		IsWithdrawn:        a.IsWithdrawn,
	}
	for _, n := range a.ClarificationNotes {
		assessment.ClarificationNotes = append(assessment.ClarificationNotes, *m.NoteToEntity(&n))
	}
	return assessment
}

// AssessmentToModel maps the assessment row only; notes are saved individually.
func (m *ApplicationMapper) AssessmentToModel(a *entity.Assessment) *model.Assessment {
	if a == nil {
		return nil
	}
	return &model.Assessment{
		Id:                 a.Id,
		ApplicationId:      a.ApplicationId,
		AllocatedToUserId:  a.AllocatedToUserId,
		CreatedAt:          a.CreatedAt,
		SubmittedAt:        a.SubmittedAt,
		Decision:           string(a.Decision),
		RejectionRationale: a.RejectionRationale,
		ReallocatedAt:      a.ReallocatedAt,
		IsWithdrawn:        a.IsWithdrawn,
	}
}

func (m *ApplicationMapper) NoteToEntity(n *model.ClarificationNote) *entity.ClarificationNote {
	return &entity.ClarificationNote{
		Id:                 n.Id,
		AssessmentId:       n.AssessmentId,
		CreatedByUserId:    n.CreatedByUserId,
		CreatedAt:          n.CreatedAt,
		Query:              n.Query,
		Response:           n.Response,
		ResponseReceivedOn: n.ResponseReceivedOn,
	}
}

func (m *ApplicationMapper) NoteToModel(n *entity.ClarificationNote) *model.ClarificationNote {
	return &model.ClarificationNote{
		Id:                 n.Id,
		AssessmentId:       n.AssessmentId,
		CreatedByUserId:    n.CreatedByUserId,
		CreatedAt:          n.CreatedAt,
		Query:              n.Query,
		Response:           n.Response,
		ResponseReceivedOn: n.ResponseReceivedOn,
	}
}
