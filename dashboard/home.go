package dashboard

import (
	"context"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/query"
)

// HomeStats are the counters of the home page
type HomeStats struct {
	Admins     AdminCounts    `json:"admins"`
	Properties PropertyCounts `json:"properties"`
	RealOwners int            `json:"realOwners"`
	// Loaded lists the keys the counters were computed from. Counters of keys which
	// are not loaded are zero.
	Loaded []string `json:"loaded"`
}

// Home computes the counters from whatever is cached, without fetching
func (d *Dashboard) Home() HomeStats {
	stats := HomeStats{Loaded: []string{}}
	if accounts, ok := query.Cached[[]api.Admin](d.cache, KeyAdmins); ok {
		stats.Admins = CountAdmins(OnlyAdmins(accounts))
		stats.Loaded = append(stats.Loaded, KeyAdmins)
	}
	if properties, ok := query.Cached[[]api.Property](d.cache, KeyAllProperties); ok {
		stats.Properties = CountProperties(properties)
		stats.Loaded = append(stats.Loaded, KeyAllProperties)
	}
	if owners, ok := query.Cached[[]api.RealOwner](d.cache, KeyRealOwners); ok {
		stats.RealOwners = len(owners)
		stats.Loaded = append(stats.Loaded, KeyRealOwners)
	}
	return stats
}

// LoadHome fetches the lists behind the home page and computes the counters. A list
// which cannot be fetched is left out and its error is returned after the others
// were loaded.
func (d *Dashboard) LoadHome(ctx context.Context) (HomeStats, error) {
	var first error
	for _, key := range []string{KeyAdmins, KeyAllProperties, KeyRealOwners} {
		if _, err := d.cache.Fetch(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return d.Home(), first
}
