package mapper

import (
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/model"
)

func PremisesToEntity(p *model.Premises) *entity.Premises {
	if p == nil {
		return nil
	}
	return &entity.Premises{
		Id:                    p.Id,
		Kind:                  entity.ServiceKind(p.Kind),
		Name:                  p.Name,
		EmailAddress:          p.EmailAddress,
		TurnaroundWorkingDays: p.TurnaroundWorkingDays,
	}
}

func PremisesToModel(p *entity.Premises) *model.Premises {
	return &model.Premises{
		Id:                    p.Id,
		Kind:                  string(p.Kind),
		Name:                  p.Name,
		EmailAddress:          p.EmailAddress,
		TurnaroundWorkingDays: p.TurnaroundWorkingDays,
	}
}

func BedToEntity(b *model.Bed) *entity.Bed {
	if b == nil {
		return nil
	}
	return &entity.Bed{Id: b.Id, PremisesId: b.PremisesId, Name: b.Name, RoomName: b.RoomName}
}

func BedToModel(b *entity.Bed) *model.Bed {
	return &model.Bed{Id: b.Id, PremisesId: b.PremisesId, Name: b.Name, RoomName: b.RoomName}
}

func LostBedToEntity(l *model.LostBed) *entity.LostBed {
	if l == nil {
		return nil
	}
	return &entity.LostBed{
		Id:          l.Id,
		PremisesId:  l.PremisesId,
		BedId:       l.BedId,
		StartDate:   l.StartDate,
		EndDate:     l.EndDate,
		ReasonId:    l.ReasonId,
		Notes:       l.Notes,
		IsCancelled: l.IsCancelled,
		CreatedAt:   l.CreatedAt,
	}
}

func LostBedToModel(l *entity.LostBed) *model.LostBed {
	return &model.LostBed{
		Id:          l.Id,
		PremisesId:  l.PremisesId,
		BedId:       l.BedId,
		StartDate:   l.StartDate,
		EndDate:     l.EndDate,
		ReasonId:    l.ReasonId,
		Notes:       l.Notes,
		IsCancelled: l.IsCancelled,
		CreatedAt:   l.CreatedAt,
	}
}

func ReferenceDataToEntity(r *model.ReferenceData) *entity.ReferenceData {
	if r == nil {
		return nil
	}
	return &entity.ReferenceData{
		Id:           r.Id,
		Category:     entity.ReferenceCategory(r.Category),
		Name:         r.Name,
		ServiceScope: entity.ServiceKind(r.ServiceScope),
		IsActive:     r.IsActive,
	}
}

func ReferenceDataToModel(r *entity.ReferenceData) *model.ReferenceData {
	return &model.ReferenceData{
		Id:           r.Id,
		Category:     string(r.Category),
		Name:         r.Name,
		ServiceScope: string(r.ServiceScope),
		IsActive:     r.IsActive,
	}
}

func DomainEventToEntity(e *model.DomainEvent) *entity.DomainEvent {
	if e == nil {
		return nil
	}
	return &entity.DomainEvent{
		Id:                 e.Id,
		Type:               e.Type,
		ApplicationId:      e.ApplicationId,
		AssessmentId:       e.AssessmentId,
		BookingId:          e.BookingId,
		PlacementRequestId: e.PlacementRequestId,
		Crn:                e.Crn,
		OccurredAt:         e.OccurredAt,
		CreatedAt:          e.CreatedAt,
		SchemaVersion:      e.SchemaVersion,
		Data:               []byte(e.Data),
		TriggerSource:      entity.TriggerSource(e.TriggerSource),
		TriggeredByUserId:  e.TriggeredByUserId,
	}
}

func DomainEventToModel(e *entity.DomainEvent) *model.DomainEvent {
	return &model.DomainEvent{
		Id:                 e.Id,
		Type:               e.Type,
		ApplicationId:      e.ApplicationId,
		AssessmentId:       e.AssessmentId,
		BookingId:          e.BookingId,
		PlacementRequestId: e.PlacementRequestId,
		Crn:                e.Crn,
		OccurredAt:         e.OccurredAt,
		CreatedAt:          e.CreatedAt,
		SchemaVersion:      e.SchemaVersion,
		Data:               e.Data,
		TriggerSource:      string(e.TriggerSource),
		TriggeredByUserId:  e.TriggeredByUserId,
	}
}
