/*
Package dashboard holds the data behind the views of the owner console

Every view reads its resources through the query cache and changes them through
mutations with an optimistic cache update. The cache keys are

	admins                         all admin accounts
	all-properties                 every submitted property
	owner-properties-pending       the review partitions
	owner-properties-approved
	owner-properties-rejected
	real-owners                    the real owners
	real-owner/{id}                one real owner
	real-owner-properties/{id}     the properties of one real owner
	lookup-data                    all lookup tables

The selectors in selectors.go are pure projections of cached collections.
*/
package dashboard

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/query"
	"github.com/relabs-tech/aqaar/core/schema"
)

// Cache keys
const (
	KeyAdmins             = "admins"
	KeyAllProperties      = "all-properties"
	KeyPendingProperties  = "owner-properties-pending"
	KeyApprovedProperties = "owner-properties-approved"
	KeyRejectedProperties = "owner-properties-rejected"
	KeyRealOwners         = "real-owners"
	KeyLookup             = "lookup-data"
)

// RealOwnerKey is the cache key of one real owner
func RealOwnerKey(id int64) string {
	return "real-owner/" + strconv.FormatInt(id, 10)
}

// RealOwnerPropertiesKey is the cache key of the properties of one real owner
func RealOwnerPropertiesKey(realOwnerID int64) string {
	return "real-owner-properties/" + strconv.FormatInt(realOwnerID, 10)
}

// Freshness of the cached resources
const (
	AdminsStaleTime     = 30 * time.Second
	PropertiesStaleTime = 60 * time.Second
	LookupStaleTime     = 5 * time.Minute
)

// Errors for actions the views do not offer
var (
	ErrAdminActive       = errors.New("an active admin cannot be deleted")
	ErrAdminNotFound     = errors.New("admin not found")
	ErrNotPending        = errors.New("only pending properties can be approved or rejected")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrRealOwnerNotFound = errors.New("real owner not found")
)

// Dashboard bundles the resources of the owner console on top of one cache
type Dashboard struct {
	cache *query.Cache
	api   *api.API
	forms *schema.Validator

	Admins     *Admins
	Properties *Properties
	RealOwners *RealOwners
	Lookup     *Lookup
}

// New creates the dashboard and registers its cache keys
func New(cache *query.Cache, a *api.API) *Dashboard {
	d := &Dashboard{cache: cache, api: a, forms: schema.Default}
	d.Admins = &Admins{d: d}
	d.Properties = &Properties{d: d}
	d.RealOwners = &RealOwners{d: d}
	d.Lookup = &Lookup{d: d}

	d.Admins.register()
	d.Properties.register()
	d.RealOwners.register()
	d.Lookup.register()
	return d
}

// Cache returns the cache of the dashboard
func (d *Dashboard) Cache() *query.Cache {
	return d.cache
}

// API returns the API the dashboard talks to
func (d *Dashboard) API() *api.API {
	return d.api
}

// validate checks a form against schemaID with messages in the language of the
// cache
func (d *Dashboard) validate(ctx context.Context, form interface{}, schemaID string) error {
	return d.forms.ValidateStruct(d.cache.Language(ctx), form, schemaID)
}

// ensure registers def unless its key is already known
func (d *Dashboard) ensure(def query.Definition) {
	if !d.cache.Registered(def.Key) {
		d.cache.Register(def)
	}
}

// splice returns items without the ones matching remove
func splice[T any](items []T, remove func(T) bool) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if !remove(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
