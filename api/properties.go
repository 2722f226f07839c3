package api

import (
	"context"
	"fmt"
)

func (a *API) listProperties(ctx context.Context, path string) ([]Property, error) {
	properties := []Property{}
	_, err := a.with(ctx).Get(path, &properties)
	return properties, err
}

// ListAllProperties returns the properties of every status
func (a *API) ListAllProperties(ctx context.Context) ([]Property, error) {
	return a.listProperties(ctx, PathAllProperties)
}

// ListOwnerProperties returns the review requests of the owner
func (a *API) ListOwnerProperties(ctx context.Context) ([]Property, error) {
	return a.listProperties(ctx, PathOwnerProperties)
}

// ListPendingProperties returns the properties waiting for review
func (a *API) ListPendingProperties(ctx context.Context) ([]Property, error) {
	return a.listProperties(ctx, PathOwnerProperties+"/pending")
}

// ListApprovedProperties returns the approved properties
func (a *API) ListApprovedProperties(ctx context.Context) ([]Property, error) {
	return a.listProperties(ctx, PathOwnerProperties+"/approved")
}

// ListRejectedProperties returns the rejected properties
func (a *API) ListRejectedProperties(ctx context.Context) ([]Property, error) {
	return a.listProperties(ctx, PathOwnerProperties+"/rejected")
}

// ListPropertiesByStatus returns the properties of one review status
func (a *API) ListPropertiesByStatus(ctx context.Context, status PropertyStatus) ([]Property, error) {
	switch status {
	case StatusPending:
		return a.ListPendingProperties(ctx)
	case StatusApproved:
		return a.ListApprovedProperties(ctx)
	case StatusRejected:
		return a.ListRejectedProperties(ctx)
	}
	return nil, fmt.Errorf("unknown property status %q", status)
}

// ApproveProperty approves a pending property
func (a *API) ApproveProperty(ctx context.Context, id int64) error {
	_, err := a.with(ctx).Post(itemPath(PathApprove, id), noBody, nil)
	return err
}

// RejectProperty rejects a pending property
func (a *API) RejectProperty(ctx context.Context, id int64) error {
	_, err := a.with(ctx).Post(itemPath(PathReject, id), noBody, nil)
	return err
}

// DeletePath returns the endpoint which deletes the property. Approved properties
// and unapproved ones are deleted through different endpoints.
func DeletePath(id int64, status PropertyStatus) string {
	if status == StatusApproved {
		return itemPath(PathDeleteApproved, id)
	}
	return itemPath(PathDeleteUnapproved, id)
}

// DeleteProperty deletes the property p
func (a *API) DeleteProperty(ctx context.Context, p Property) error {
	_, err := a.with(ctx).Delete(DeletePath(p.ID, p.Status))
	return err
}
