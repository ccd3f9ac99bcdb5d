package api

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/parchis-live/relay/game/room"
)

// listingTTL keeps polled room listings fresh enough for a lobby screen
// while shielding the store from one read per poll.
const listingTTL = time.Second

const listingKey = "public_rooms"

// listingCache memoizes the public room listing. Concurrent misses are
// collapsed by singleflight so a burst of lobby polls costs one store read.
type listingCache struct {
	cache *cache.Cache
	group singleflight.Group
}

func newListingCache() *listingCache {
	return &listingCache{
		cache: cache.New(listingTTL, 5*time.Minute),
	}
}

// get returns the cached listing, fetching through fn on a miss.
func (c *listingCache) get(ctx context.Context, fn func(context.Context) ([]room.Summary, error)) ([]room.Summary, error) {
	if val, found := c.cache.Get(listingKey); found {
		if rooms, ok := val.([]room.Summary); ok {
			return rooms, nil
		}
	}

	val, err, _ := c.group.Do(listingKey, func() (interface{}, error) {
		// Another poller may have filled the cache while we waited.
		if cached, found := c.cache.Get(listingKey); found {
			if rooms, ok := cached.([]room.Summary); ok {
				return rooms, nil
			}
		}

		rooms, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Set(listingKey, rooms, listingTTL)
		return rooms, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]room.Summary), nil
}
