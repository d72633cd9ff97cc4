package memory

import (
	"context"
	"fmt"
	"sync"

	"placement-engine-be/internal/repository/contract"
	"placement-engine-be/internal/repository/unitofwork"
)

// Store is a serialisable in-memory backing for the unit of work. A transaction holds the
// store-wide lock from Begin until Commit or Rollback and works on a cloned arena.
type Store struct {
	mu    sync.RWMutex
	state *arena
}

func NewStore() *Store {
	return &Store{state: newArena()}
}

// NewUnitOfWork satisfies unitofwork.RepositoryFactory.
func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: s}
}

type UnitOfWork struct {
	store *Store
	tx    *arena
	ctx   context.Context
	hooks []func(ctx context.Context)
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	u.ctx = ctx
	u.tx = u.store.state.clone()
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.state = u.tx
	u.tx = nil
	u.store.mu.Unlock()

	hooks := u.hooks
	u.hooks = nil
	for _, hook := range hooks {
		hook(u.ctx)
	}
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.tx = nil
	u.hooks = nil
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) AfterCommit(fn func(ctx context.Context)) {
	u.hooks = append(u.hooks, fn)
}

// read runs fn against the transaction arena, or a read-locked view of the store outside one.
func (u *UnitOfWork) read(fn func(a *arena) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return fn(u.store.state)
}

// write runs fn against the transaction arena, or commits immediately outside one.
func (u *UnitOfWork) write(fn func(a *arena) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(u.store.state)
}

func (u *UnitOfWork) ApplicationRepository() contract.ApplicationRepository {
	return &applicationRepository{uow: u}
}

func (u *UnitOfWork) OfflineApplicationRepository() contract.OfflineApplicationRepository {
	return &offlineApplicationRepository{uow: u}
}

func (u *UnitOfWork) AssessmentRepository() contract.AssessmentRepository {
	return &assessmentRepository{uow: u}
}

func (u *UnitOfWork) PlacementApplicationRepository() contract.PlacementApplicationRepository {
	return &placementApplicationRepository{uow: u}
}

func (u *UnitOfWork) PlacementRequestRepository() contract.PlacementRequestRepository {
	return &placementRequestRepository{uow: u}
}

func (u *UnitOfWork) PremisesRepository() contract.PremisesRepository {
	return &premisesRepository{uow: u}
}

func (u *UnitOfWork) BedRepository() contract.BedRepository {
	return &bedRepository{uow: u}
}

func (u *UnitOfWork) LostBedRepository() contract.LostBedRepository {
	return &lostBedRepository{uow: u}
}

func (u *UnitOfWork) BookingRepository() contract.BookingRepository {
	return &bookingRepository{uow: u}
}

func (u *UnitOfWork) ReferenceDataRepository() contract.ReferenceDataRepository {
	return &referenceDataRepository{uow: u}
}

func (u *UnitOfWork) DomainEventRepository() contract.DomainEventRepository {
	return &domainEventRepository{uow: u}
}
