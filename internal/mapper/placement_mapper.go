package mapper

import (
	"encoding/json"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/model"

	"gorm.io/datatypes"
)

type PlacementMapper struct{}

func NewPlacementMapper() *PlacementMapper {
	return &PlacementMapper{}
}

func (m *PlacementMapper) ApplicationToEntity(p *model.PlacementApplication) *entity.PlacementApplication {
	if p == nil {
		return nil
	}

	pa := &entity.PlacementApplication{
		Id:                p.Id,
		ApplicationId:     p.ApplicationId,
		CreatedByUserId:   p.CreatedByUserId,
		CreatedAt:         p.CreatedAt,
		SubmittedAt:       p.SubmittedAt,
		AllocatedToUserId: p.AllocatedToUserId,
		AllocatedAt:       p.AllocatedAt,
		ReallocatedAt:     p.ReallocatedAt,
		Decision:          entity.PlacementApplicationDecision(p.Decision),
		DecisionMadeAt:    p.DecisionMadeAt,
		WithdrawalReason:  entity.WithdrawalReason(p.WithdrawalReason),
		PlacementType:     entity.PlacementType(p.PlacementType),
	}
	for _, d := range p.Dates {
		pa.Dates = append(pa.Dates, entity.PlacementDate{
			Id:                     d.Id,
			PlacementApplicationId: d.PlacementApplicationId,
			ExpectedArrival:        d.ExpectedArrival,
			Duration:               d.Duration,
		})
	}
	return pa
}

// ApplicationToModel includes the dates so Create inserts them as associations.
func (m *PlacementMapper) ApplicationToModel(p *entity.PlacementApplication) *model.PlacementApplication {
	if p == nil {
		return nil
	}

	row := &model.PlacementApplication{
		Id:                p.Id,
		ApplicationId:     p.ApplicationId,
		CreatedByUserId:   p.CreatedByUserId,
		CreatedAt:         p.CreatedAt,
		SubmittedAt:       p.SubmittedAt,
		AllocatedToUserId: p.AllocatedToUserId,
		AllocatedAt:       p.AllocatedAt,
		ReallocatedAt:     p.ReallocatedAt,
		Decision:          string(p.Decision),
		DecisionMadeAt:    p.DecisionMadeAt,
		WithdrawalReason:  string(p.WithdrawalReason),
		PlacementType:     string(p.PlacementType),
	}
	for _, d := range p.Dates {
		row.Dates = append(row.Dates, model.PlacementDate{
			Id:                     d.Id,
			PlacementApplicationId: p.Id,
			ExpectedArrival:        d.ExpectedArrival,
			Duration:               d.Duration,
		})
	}
	return row
}

func (m *PlacementMapper) RequestToEntity(p *model.PlacementRequest) *entity.PlacementRequest {
	if p == nil {
		return nil
	}

	return &entity.PlacementRequest{
		Id:                     p.Id,
		ApplicationId:          p.ApplicationId,
		AssessmentId:           p.AssessmentId,
		PlacementApplicationId: p.PlacementApplicationId,
		CreatedAt:              p.CreatedAt,
		ExpectedArrival:        p.ExpectedArrival,
		Duration:               p.Duration,
		Requirements: entity.PlacementRequirements{
			Postcode:          p.Postcode,
			RadiusMiles:       p.RadiusMiles,
			ApType:            p.ApType,
			EssentialCriteria: decodeCriteria(p.EssentialCriteria),
			DesirableCriteria: decodeCriteria(p.DesirableCriteria),
		},
		AllocatedToUserId: p.AllocatedToUserId,
		ReallocatedAt:     p.ReallocatedAt,
		BookingId:         p.BookingId,
		IsWithdrawn:       p.IsWithdrawn,
		WithdrawalReason:  entity.WithdrawalReason(p.WithdrawalReason),
		IsParole:          p.IsParole,
		Notes:             p.Notes,
	}
}

func (m *PlacementMapper) RequestToModel(p *entity.PlacementRequest) *model.PlacementRequest {
	if p == nil {
		return nil
	}

	return &model.PlacementRequest{
		Id:                     p.Id,
		ApplicationId:          p.ApplicationId,
		AssessmentId:           p.AssessmentId,
		PlacementApplicationId: p.PlacementApplicationId,
		CreatedAt:              p.CreatedAt,
		ExpectedArrival:        p.ExpectedArrival,
		Duration:               p.Duration,
		Postcode:               p.Requirements.Postcode,
		RadiusMiles:            p.Requirements.RadiusMiles,
		ApType:                 p.Requirements.ApType,
		EssentialCriteria:      encodeCriteria(p.Requirements.EssentialCriteria),
		DesirableCriteria:      encodeCriteria(p.Requirements.DesirableCriteria),
		AllocatedToUserId:      p.AllocatedToUserId,
		ReallocatedAt:          p.ReallocatedAt,
		BookingId:              p.BookingId,
		IsWithdrawn:            p.IsWithdrawn,
		WithdrawalReason:       string(p.WithdrawalReason),
		IsParole:               p.IsParole,
		Notes:                  p.Notes,
	}
}

func encodeCriteria(criteria []string) datatypes.JSON {
	if criteria == nil {
		criteria = []string{}
	}
	data, _ := json.Marshal(criteria)
	return datatypes.JSON(data)
}

func decodeCriteria(raw datatypes.JSON) []string {
	var criteria []string
	if len(raw) == 0 {
		return criteria
	}
	_ = json.Unmarshal(raw, &criteria)
	return criteria
}
