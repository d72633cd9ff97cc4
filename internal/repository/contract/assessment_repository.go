package contract

import (
	"context"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

// AssessmentRepository loads assessments together with their clarification notes.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *entity.Assessment) error
	Update(ctx context.Context, assessment *entity.Assessment) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Assessment, error)
	FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Assessment, error)
	FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.Assessment, error)
	SaveClarificationNote(ctx context.Context, note *entity.ClarificationNote) error
}
