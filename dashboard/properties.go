package dashboard

import (
	"context"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/query"
)

// Properties is the property review view
type Properties struct {
	d *Dashboard
}

// statusKeys maps the review statuses to the keys of their partitions
var statusKeys = map[api.PropertyStatus]string{
	api.StatusPending:  KeyPendingProperties,
	api.StatusApproved: KeyApprovedProperties,
	api.StatusRejected: KeyRejectedProperties,
}

// PropertyKeys are the keys of all property lists
var PropertyKeys = []string{KeyAllProperties, KeyPendingProperties, KeyApprovedProperties, KeyRejectedProperties}

// KeyOf returns the key of the list selected by f
func KeyOf(f PropertyFilter) string {
	if key, ok := statusKeys[api.PropertyStatus(f)]; ok {
		return key
	}
	return KeyAllProperties
}

func (p *Properties) register() {
	fetchers := map[string]func(ctx context.Context) ([]api.Property, error){
		KeyAllProperties:      p.d.api.ListAllProperties,
		KeyPendingProperties:  p.d.api.ListPendingProperties,
		KeyApprovedProperties: p.d.api.ListApprovedProperties,
		KeyRejectedProperties: p.d.api.ListRejectedProperties,
	}
	for key, fetch := range fetchers {
		fetch := fetch
		p.d.cache.Register(query.Definition{
			Key: key,
			Fetch: func(ctx context.Context) (interface{}, error) {
				return fetch(ctx)
			},
			StaleTime:       PropertiesStaleTime,
			RefetchInterval: PropertiesStaleTime,
		})
	}
}

// ByStatus returns the properties selected by f. Every filter has its own list.
func (p *Properties) ByStatus(ctx context.Context, f PropertyFilter) ([]api.Property, error) {
	return query.Read[[]api.Property](ctx, p.d.cache, KeyOf(f))
}

// Partitions splits the list of all properties by status
func (p *Properties) Partitions(ctx context.Context) (PropertyPartitions, error) {
	all, err := p.ByStatus(ctx, PropertiesAll)
	if err != nil {
		return PropertyPartitions{}, err
	}
	return PartitionProperties(all), nil
}

// Counts counts the list of all properties by status
func (p *Properties) Counts(ctx context.Context) (PropertyCounts, error) {
	all, err := p.ByStatus(ctx, PropertiesAll)
	if err != nil {
		return PropertyCounts{}, err
	}
	return CountProperties(all), nil
}

// Find returns the property id from the list of all properties, or from the pending
// list if it is not there
func (p *Properties) Find(ctx context.Context, id int64) (api.Property, error) {
	for _, key := range []string{KeyAllProperties, KeyPendingProperties} {
		properties, err := query.Read[[]api.Property](ctx, p.d.cache, key)
		if err != nil {
			return api.Property{}, err
		}
		for _, property := range properties {
			if property.ID == id {
				return property, nil
			}
		}
	}
	return api.Property{}, ErrPropertyNotFound
}

// Approve approves a pending property
func (p *Properties) Approve(ctx context.Context, id int64) error {
	return p.review(ctx, id, api.StatusApproved)
}

// Reject rejects a pending property
func (p *Properties) Reject(ctx context.Context, id int64) error {
	return p.review(ctx, id, api.StatusRejected)
}

// review moves a pending property to status. The cache shows the property in the
// partition of status right away, and with status in the list of all properties.
func (p *Properties) review(ctx context.Context, id int64, status api.PropertyStatus) error {
	property, err := p.Find(ctx, id)
	if err != nil {
		return err
	}
	if property.Status != api.StatusPending {
		return ErrNotPending
	}
	reviewed := property
	reviewed.Status = status

	label, do := "properties.approve", p.d.api.ApproveProperty
	success, failure := "properties.actions.approveSuccess", "properties.actions.approveError"
	if status == api.StatusRejected {
		label, do = "properties.reject", p.d.api.RejectProperty
		success, failure = "properties.actions.rejectSuccess", "properties.actions.rejectError"
	}
	keys := []string{KeyAllProperties, KeyPendingProperties, statusKeys[status]}

	return p.d.cache.Mutate(ctx, query.Mutation{
		Label: label,
		Optimistic: []query.Patch{
			query.Edit(KeyAllProperties, func(properties []api.Property) []api.Property {
				for i := range properties {
					if properties[i].ID == id {
						properties[i].Status = status
					}
				}
				return properties
			}),
			query.Edit(KeyPendingProperties, func(properties []api.Property) []api.Property {
				return splice(properties, func(p api.Property) bool { return p.ID == id })
			}),
			query.Edit(statusKeys[status], func(properties []api.Property) []api.Property {
				properties = splice(properties, func(p api.Property) bool { return p.ID == id })
				return append(properties, reviewed)
			}),
		},
		Do: func(ctx context.Context) error {
			return do(ctx, id)
		},
		Invalidate: keys,
		Settle:     keys,
		Success:    success,
		Failure:    failure,
	})
}

// Delete deletes a property through the endpoint matching its status and removes it
// from every list right away
func (p *Properties) Delete(ctx context.Context, id int64) error {
	property, err := p.Find(ctx, id)
	if err != nil {
		return err
	}
	var patches []query.Patch
	for _, key := range PropertyKeys {
		patches = append(patches, query.Edit(key, func(properties []api.Property) []api.Property {
			return splice(properties, func(p api.Property) bool { return p.ID == id })
		}))
	}
	return p.d.cache.Mutate(ctx, query.Mutation{
		Label:      "properties.delete",
		Optimistic: patches,
		Do: func(ctx context.Context) error {
			return p.d.api.DeleteProperty(ctx, property)
		},
		Invalidate: PropertyKeys,
		Settle:     PropertyKeys,
		Success:    "properties.actions.deleteSuccess",
		Failure:    "properties.actions.deleteError",
	})
}
