package dashboard

import (
	"context"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/query"
	"github.com/relabs-tech/aqaar/core/schema"
)

// RealOwners is the real owner management view. Real owners are never served stale:
// every read asks the backend.
type RealOwners struct {
	d *Dashboard
}

func (r *RealOwners) register() {
	r.d.cache.Register(query.Definition{
		Key: KeyRealOwners,
		Fetch: func(ctx context.Context) (interface{}, error) {
			return r.d.api.ListRealOwners(ctx)
		},
	})
}

func (r *RealOwners) registerOwner(id int64) string {
	key := RealOwnerKey(id)
	r.d.ensure(query.Definition{
		Key: key,
		Fetch: func(ctx context.Context) (interface{}, error) {
			return r.d.api.GetRealOwner(ctx, id)
		},
	})
	return key
}

// List returns all real owners
func (r *RealOwners) List(ctx context.Context) ([]api.RealOwner, error) {
	return query.Read[[]api.RealOwner](ctx, r.d.cache, KeyRealOwners)
}

// Get returns one real owner
func (r *RealOwners) Get(ctx context.Context, id int64) (api.RealOwner, error) {
	return query.Read[api.RealOwner](ctx, r.d.cache, r.registerOwner(id))
}

// Create validates the form and creates a real owner. Failures show the message of
// the backend if it sent one.
func (r *RealOwners) Create(ctx context.Context, in api.RealOwnerInput) (api.RealOwner, error) {
	var created api.RealOwner
	if err := r.d.validate(ctx, in, schema.RealOwner); err != nil {
		return created, err
	}
	err := r.d.cache.Mutate(ctx, query.Mutation{
		Label: "realOwners.create",
		Do: func(ctx context.Context) (err error) {
			created, err = r.d.api.CreateRealOwner(ctx, in)
			return err
		},
		Invalidate:    []string{KeyRealOwners},
		Settle:        []string{KeyRealOwners},
		Success:       "realOwners.toast.createSuccess",
		Failure:       "realOwners.toast.createError",
		ServerMessage: true,
	})
	return created, err
}

// Update validates the provided fields and changes them on the real owner. Fields
// which are not provided keep their stored value.
func (r *RealOwners) Update(ctx context.Context, id int64, u api.RealOwnerUpdate) (api.RealOwner, error) {
	var updated api.RealOwner
	if err := r.d.validate(ctx, u, schema.RealOwnerUpdate); err != nil {
		return updated, err
	}
	key := r.registerOwner(id)
	err := r.d.cache.Mutate(ctx, query.Mutation{
		Label: "realOwners.update",
		Do: func(ctx context.Context) (err error) {
			updated, err = r.d.api.UpdateRealOwner(ctx, id, u)
			return err
		},
		Invalidate:    []string{KeyRealOwners, key},
		Settle:        []string{KeyRealOwners, key},
		Success:       "realOwners.toast.updateSuccess",
		Failure:       "realOwners.toast.updateError",
		ServerMessage: true,
	})
	return updated, err
}

// Delete deletes a real owner together with its properties and removes it from the
// list right away
func (r *RealOwners) Delete(ctx context.Context, id int64) error {
	return r.d.cache.Mutate(ctx, query.Mutation{
		Label: "realOwners.delete",
		Optimistic: []query.Patch{
			query.Edit(KeyRealOwners, func(owners []api.RealOwner) []api.RealOwner {
				return splice(owners, func(o api.RealOwner) bool { return o.ID == id })
			}),
		},
		Do: func(ctx context.Context) error {
			return r.d.api.DeleteRealOwner(ctx, id)
		},
		Invalidate:    []string{KeyRealOwners, RealOwnerKey(id), RealOwnerPropertiesKey(id)},
		Settle:        []string{KeyRealOwners},
		Success:       "realOwners.toast.deleteSuccess",
		Failure:       "realOwners.toast.deleteError",
		ServerMessage: true,
	})
}

// Properties returns the property view of one real owner
func (r *RealOwners) Properties(realOwnerID int64) *OwnerProperties {
	o := &OwnerProperties{d: r.d, realOwnerID: realOwnerID, key: RealOwnerPropertiesKey(realOwnerID)}
	r.d.ensure(query.Definition{
		Key: o.key,
		Fetch: func(ctx context.Context) (interface{}, error) {
			return r.d.api.ListRealOwnerProperties(ctx, realOwnerID)
		},
	})
	return o
}

// OwnerProperties is the property view of one real owner
type OwnerProperties struct {
	d           *Dashboard
	realOwnerID int64
	key         string
}

// Key returns the cache key of the properties
func (o *OwnerProperties) Key() string {
	return o.key
}

// List returns the properties of the real owner
func (o *OwnerProperties) List(ctx context.Context) ([]api.RealOwnerProperty, error) {
	return query.Read[[]api.RealOwnerProperty](ctx, o.d.cache, o.key)
}

// Get returns one property of the real owner
func (o *OwnerProperties) Get(ctx context.Context, id int64) (api.RealOwnerProperty, error) {
	properties, err := o.List(ctx)
	if err != nil {
		return api.RealOwnerProperty{}, err
	}
	for _, p := range properties {
		if p.ID == id {
			return p, nil
		}
	}
	return o.d.api.GetRealOwnerProperty(ctx, id)
}

// Summary aggregates the payments of the properties of the real owner
func (o *OwnerProperties) Summary(ctx context.Context) (PropertySummary, error) {
	properties, err := o.List(ctx)
	if err != nil {
		return PropertySummary{}, err
	}
	return Summarize(properties), nil
}

// Create validates the form and creates a property for the real owner
func (o *OwnerProperties) Create(ctx context.Context, in api.RealOwnerPropertyInput) (api.RealOwnerProperty, error) {
	var created api.RealOwnerProperty
	in.RealOwnerID = o.realOwnerID
	if err := o.d.validate(ctx, in, schema.RealOwnerProperty); err != nil {
		return created, err
	}
	err := o.d.cache.Mutate(ctx, query.Mutation{
		Label: "realOwnerProperties.create",
		Do: func(ctx context.Context) (err error) {
			created, err = o.d.api.CreateRealOwnerProperty(ctx, in)
			return err
		},
		Invalidate:    []string{o.key},
		Settle:        []string{o.key},
		Success:       "realOwnerProperties.toast.createSuccess",
		Failure:       "realOwnerProperties.toast.createError",
		ServerMessage: true,
	})
	return created, err
}

// Update validates the form and replaces a property of the real owner
func (o *OwnerProperties) Update(ctx context.Context, id int64, in api.RealOwnerPropertyInput) (api.RealOwnerProperty, error) {
	var updated api.RealOwnerProperty
	in.RealOwnerID = o.realOwnerID
	if err := o.d.validate(ctx, in, schema.RealOwnerProperty); err != nil {
		return updated, err
	}
	err := o.d.cache.Mutate(ctx, query.Mutation{
		Label: "realOwnerProperties.update",
		Do: func(ctx context.Context) (err error) {
			updated, err = o.d.api.UpdateRealOwnerProperty(ctx, id, in)
			return err
		},
		Invalidate:    []string{o.key},
		Settle:        []string{o.key},
		Success:       "realOwnerProperties.toast.updateSuccess",
		Failure:       "realOwnerProperties.toast.updateError",
		ServerMessage: true,
	})
	return updated, err
}

// Delete deletes a property of the real owner and removes it from the list right away
func (o *OwnerProperties) Delete(ctx context.Context, id int64) error {
	return o.d.cache.Mutate(ctx, query.Mutation{
		Label: "realOwnerProperties.delete",
		Optimistic: []query.Patch{
			query.Edit(o.key, func(properties []api.RealOwnerProperty) []api.RealOwnerProperty {
				return splice(properties, func(p api.RealOwnerProperty) bool { return p.ID == id })
			}),
		},
		Do: func(ctx context.Context) error {
			return o.d.api.DeleteRealOwnerProperty(ctx, id)
		},
		Invalidate:    []string{o.key},
		Settle:        []string{o.key},
		Success:       "realOwnerProperties.toast.deleteSuccess",
		Failure:       "realOwnerProperties.toast.deleteError",
		ServerMessage: true,
	})
}
