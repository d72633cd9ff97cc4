package unitofwork

import (
	"context"

	"placement-engine-be/internal/repository/contract"
)

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// AfterCommit registers fn to run once Commit succeeds. Hooks are dropped on rollback.
	AfterCommit(fn func(ctx context.Context))

	ApplicationRepository() contract.ApplicationRepository
	OfflineApplicationRepository() contract.OfflineApplicationRepository
	AssessmentRepository() contract.AssessmentRepository
	PlacementApplicationRepository() contract.PlacementApplicationRepository
	PlacementRequestRepository() contract.PlacementRequestRepository
	PremisesRepository() contract.PremisesRepository
	BedRepository() contract.BedRepository
	LostBedRepository() contract.LostBedRepository
	BookingRepository() contract.BookingRepository
	ReferenceDataRepository() contract.ReferenceDataRepository
	DomainEventRepository() contract.DomainEventRepository
}
