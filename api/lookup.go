package api

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/aqaar/core/client"
)

// Lookup tables
const (
	LookupRegions              = "regions"
	LookupCities               = "cities"
	LookupNeighborhoods        = "neighborhoods"
	LookupPropertyTypes        = "property-types"
	LookupListingTypes         = "listing-types"
	LookupPropertyConditions   = "property-conditions"
	LookupFinishingTypes       = "finishing-types"
	LookupPropertyStatusValues = "property-status-values"
	LookupPropertyFeatures     = "property-features"
)

func (a *API) lookup(ctx context.Context, table string) client.Collection {
	return a.with(ctx).Collection(PathLookup + "/" + table)
}

func (a *API) lookupItems(ctx context.Context, table string) ([]LookupItem, error) {
	items := []LookupItem{}
	_, err := a.lookup(ctx, table).List(&items)
	return items, err
}

// Regions returns all regions
func (a *API) Regions(ctx context.Context) ([]LookupItem, error) {
	return a.lookupItems(ctx, LookupRegions)
}

// Cities returns the cities of a region, or all cities if regionID is zero
func (a *API) Cities(ctx context.Context, regionID int64) ([]CityItem, error) {
	cities := []CityItem{}
	_, err := a.lookup(ctx, LookupCities).WithIDParameter("region_id", regionID).List(&cities)
	return cities, err
}

// Neighborhoods returns the neighborhoods of a city, or all neighborhoods if cityID
// is zero
func (a *API) Neighborhoods(ctx context.Context, cityID int64) ([]NeighborhoodItem, error) {
	neighborhoods := []NeighborhoodItem{}
	_, err := a.lookup(ctx, LookupNeighborhoods).WithIDParameter("city_id", cityID).List(&neighborhoods)
	return neighborhoods, err
}

// PropertyTypes returns all property types
func (a *API) PropertyTypes(ctx context.Context) ([]LookupItem, error) {
	return a.lookupItems(ctx, LookupPropertyTypes)
}

// ListingTypes returns all listing types
func (a *API) ListingTypes(ctx context.Context) ([]LookupItem, error) {
	return a.lookupItems(ctx, LookupListingTypes)
}

// PropertyConditions returns all property conditions
func (a *API) PropertyConditions(ctx context.Context) ([]LookupItem, error) {
	return a.lookupItems(ctx, LookupPropertyConditions)
}

// FinishingTypes returns all finishing types
func (a *API) FinishingTypes(ctx context.Context) ([]LookupItem, error) {
	return a.lookupItems(ctx, LookupFinishingTypes)
}

// PropertyStatusValues returns all property status values
func (a *API) PropertyStatusValues(ctx context.Context) ([]LookupItem, error) {
	return a.lookupItems(ctx, LookupPropertyStatusValues)
}

// PropertyFeatures returns all property features
func (a *API) PropertyFeatures(ctx context.Context) ([]LookupItem, error) {
	return a.lookupItems(ctx, LookupPropertyFeatures)
}

// AllLookupData fetches all lookup tables in parallel. The first failing table
// cancels the others and its error is returned.
func (a *API) AllLookupData(ctx context.Context) (LookupData, error) {
	var data LookupData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { data.Regions, err = a.Regions(ctx); return })
	g.Go(func() (err error) { data.Cities, err = a.Cities(ctx, 0); return })
	g.Go(func() (err error) { data.Neighborhoods, err = a.Neighborhoods(ctx, 0); return })
	g.Go(func() (err error) { data.PropertyTypes, err = a.PropertyTypes(ctx); return })
	g.Go(func() (err error) { data.ListingTypes, err = a.ListingTypes(ctx); return })
	g.Go(func() (err error) { data.PropertyConditions, err = a.PropertyConditions(ctx); return })
	g.Go(func() (err error) { data.FinishingTypes, err = a.FinishingTypes(ctx); return })
	g.Go(func() (err error) { data.PropertyStatusValues, err = a.PropertyStatusValues(ctx); return })
	g.Go(func() (err error) { data.PropertyFeatures, err = a.PropertyFeatures(ctx); return })
	if err := g.Wait(); err != nil {
		return LookupData{}, err
	}
	return data, nil
}
