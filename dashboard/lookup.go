package dashboard

import (
	"context"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/query"
)

// Lookup serves the lookup tables. They rarely change and stay fresh for
// LookupStaleTime.
type Lookup struct {
	d *Dashboard
}

func (l *Lookup) register() {
	l.d.cache.Register(query.Definition{
		Key: KeyLookup,
		Fetch: func(ctx context.Context) (interface{}, error) {
			return l.d.api.AllLookupData(ctx)
		},
		StaleTime: LookupStaleTime,
	})
}

// Data returns all lookup tables
func (l *Lookup) Data(ctx context.Context) (api.LookupData, error) {
	return query.Read[api.LookupData](ctx, l.d.cache, KeyLookup)
}

// Name returns the name of entry id of table in the language of the cache, or "" if
// it is unknown
func (l *Lookup) Name(ctx context.Context, table string, id int64) (string, error) {
	data, err := l.Data(ctx)
	if err != nil {
		return "", err
	}
	return data.Name(table, id, l.d.cache.Language(ctx)), nil
}

// Location describes where a property is
type Location struct {
	Region       string
	City         string
	Neighborhood string
}

// Locate resolves the location ids in the language of the cache
func (l *Lookup) Locate(ctx context.Context, regionID, cityID, neighborhoodID int64) (Location, error) {
	data, err := l.Data(ctx)
	if err != nil {
		return Location{}, err
	}
	lang := l.d.cache.Language(ctx)
	return Location{
		Region:       data.Region(regionID, lang),
		City:         data.City(cityID, lang),
		Neighborhood: data.Neighborhood(neighborhoodID, lang),
	}, nil
}
