package offender

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CachedLookup memoises successful lookups. Errors are never cached.
type CachedLookup struct {
	people Lookup
	staff  StaffLookup
	cache  *cache.Cache
}

func NewCachedLookup(people Lookup, staff StaffLookup, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		people: people,
		staff:  staff,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (c *CachedLookup) GetOffenderByCrn(ctx context.Context, crn string) (*PersonDetails, error) {
	key := "person:" + crn
	if x, found := c.cache.Get(key); found {
		return x.(*PersonDetails), nil
	}

	person, err := c.people.GetOffenderByCrn(ctx, crn)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, person, cache.DefaultExpiration)
	return person, nil
}

func (c *CachedLookup) GetStaffByUserId(ctx context.Context, userId uuid.UUID) (*StaffDetails, error) {
	key := "staff:" + userId.String()
	if x, found := c.cache.Get(key); found {
		return x.(*StaffDetails), nil
	}

	staff, err := c.staff.GetStaffByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, staff, cache.DefaultExpiration)
	return staff, nil
}
