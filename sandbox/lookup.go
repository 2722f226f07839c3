package sandbox

import (
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"

	"github.com/relabs-tech/aqaar/api"
)

func (b *Backend) handleLookup() {
	tables := map[string]func(r *http.Request) (interface{}, error){
		api.LookupRegions: func(r *http.Request) (interface{}, error) { return b.lookup.Regions, nil },
		api.LookupCities: func(r *http.Request) (interface{}, error) {
			regionID, err := optionalID(r, "region_id")
			if err != nil || regionID == 0 {
				return b.lookup.Cities, err
			}
			return nonNil(b.lookup.CitiesOf(regionID)), nil
		},
		api.LookupNeighborhoods: func(r *http.Request) (interface{}, error) {
			cityID, err := optionalID(r, "city_id")
			if err != nil || cityID == 0 {
				return b.lookup.Neighborhoods, err
			}
			return nonNil(b.lookup.NeighborhoodsOf(cityID)), nil
		},
		api.LookupPropertyTypes:        func(r *http.Request) (interface{}, error) { return b.lookup.PropertyTypes, nil },
		api.LookupListingTypes:         func(r *http.Request) (interface{}, error) { return b.lookup.ListingTypes, nil },
		api.LookupPropertyConditions:   func(r *http.Request) (interface{}, error) { return b.lookup.PropertyConditions, nil },
		api.LookupFinishingTypes:       func(r *http.Request) (interface{}, error) { return b.lookup.FinishingTypes, nil },
		api.LookupPropertyStatusValues: func(r *http.Request) (interface{}, error) { return b.lookup.PropertyStatusValues, nil },
		api.LookupPropertyFeatures:     func(r *http.Request) (interface{}, error) { return b.lookup.PropertyFeatures, nil },
	}
	for table, items := range tables {
		items := items
		b.router.Handle(api.PathLookup+"/"+table, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// lookup tables are never modified after seeding
			v, err := items(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusOK, v)
		}))).Methods(http.MethodGet)
	}
}

func optionalID(r *http.Request, key string) (int64, error) {
	p := r.URL.Query().Get(key)
	if p == "" {
		return 0, nil
	}
	return strconv.ParseInt(p, 10, 64)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
