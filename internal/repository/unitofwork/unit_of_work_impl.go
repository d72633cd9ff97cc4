package unitofwork

import (
	"context"
	"fmt"

	"placement-engine-be/internal/repository/contract"
	"placement-engine-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db    *gorm.DB
	tx    *gorm.DB
	ctx   context.Context
	hooks []func(ctx context.Context)
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.ctx = ctx
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	if err != nil {
		u.hooks = nil
		return err
	}

	hooks := u.hooks
	u.hooks = nil
	for _, hook := range hooks {
		hook(u.ctx)
	}
	return nil
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	u.hooks = nil
	return err
}

func (u *UnitOfWorkImpl) AfterCommit(fn func(ctx context.Context)) {
	u.hooks = append(u.hooks, fn)
}

// Repository Accessors

func (u *UnitOfWorkImpl) ApplicationRepository() contract.ApplicationRepository {
	return implementation.NewApplicationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) OfflineApplicationRepository() contract.OfflineApplicationRepository {
	return implementation.NewOfflineApplicationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AssessmentRepository() contract.AssessmentRepository {
	return implementation.NewAssessmentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PlacementApplicationRepository() contract.PlacementApplicationRepository {
	return implementation.NewPlacementApplicationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PlacementRequestRepository() contract.PlacementRequestRepository {
	return implementation.NewPlacementRequestRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PremisesRepository() contract.PremisesRepository {
	return implementation.NewPremisesRepository(u.getDB())
}

func (u *UnitOfWorkImpl) BedRepository() contract.BedRepository {
	return implementation.NewBedRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LostBedRepository() contract.LostBedRepository {
	return implementation.NewLostBedRepository(u.getDB())
}

func (u *UnitOfWorkImpl) BookingRepository() contract.BookingRepository {
	return implementation.NewBookingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ReferenceDataRepository() contract.ReferenceDataRepository {
	return implementation.NewReferenceDataRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DomainEventRepository() contract.DomainEventRepository {
	return implementation.NewDomainEventRepository(u.getDB())
}
