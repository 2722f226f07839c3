package api

import (
	"context"
)

// ListAdmins returns all user accounts visible to the owner. The list is not
// restricted to admins, see RoleAdmin.
func (a *API) ListAdmins(ctx context.Context) ([]Admin, error) {
	admins := []Admin{}
	_, err := a.with(ctx).Get(PathAdmins, &admins)
	return admins, err
}

// ToggleAdminStatus flips the active flag of an admin
func (a *API) ToggleAdminStatus(ctx context.Context, id int64) error {
	_, err := a.with(ctx).Put(itemPath(PathToggleAdmin, id), noBody, nil)
	return err
}

// DeleteAdmin deletes an admin account
func (a *API) DeleteAdmin(ctx context.Context, id int64) error {
	_, err := a.with(ctx).Delete(itemPath(PathDeleteAdmin, id))
	return err
}
