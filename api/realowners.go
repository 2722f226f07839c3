package api

import (
	"context"

	"github.com/relabs-tech/aqaar/core/client"
	"github.com/relabs-tech/aqaar/core/kss"
)

// Names of the multipart parts of real owner forms
const (
	PartRealOwner = "realowner"
	PartIBANImage = "ibanImage"
)

func (a *API) realOwners(ctx context.Context) client.Collection {
	return a.with(ctx).Collection(PathRealOwners)
}

// ListRealOwners returns all real owners
func (a *API) ListRealOwners(ctx context.Context) ([]RealOwner, error) {
	owners := []RealOwner{}
	_, err := a.realOwners(ctx).List(&owners)
	return owners, err
}

// GetRealOwner returns one real owner
func (a *API) GetRealOwner(ctx context.Context, id int64) (RealOwner, error) {
	var owner RealOwner
	_, err := a.realOwners(ctx).Item(id).Read(&owner)
	return owner, err
}

// RealOwnerForm builds the multipart form which creates a real owner: the record as
// a JSON part named realowner and the IBAN image as file part named ibanImage.
// Without an image, ibanImage is sent as an empty field.
func RealOwnerForm(in RealOwnerInput) (client.Multipart, error) {
	var form client.Multipart
	record, err := client.JSONPart(PartRealOwner, in)
	if err != nil {
		return form, err
	}
	form.Add(record, imagePart(in.IBANImage))
	return form, nil
}

func imagePart(image *kss.Image) client.Part {
	if image == nil || len(image.Data) == 0 {
		return client.FieldPart(PartIBANImage, "")
	}
	return client.FilePart(PartIBANImage, image.Name, image.Data)
}

// CreateRealOwner creates a real owner, see RealOwnerForm
func (a *API) CreateRealOwner(ctx context.Context, in RealOwnerInput) (RealOwner, error) {
	var owner RealOwner
	form, err := RealOwnerForm(in)
	if err != nil {
		return owner, err
	}
	_, err = a.realOwners(ctx).CreateMultipart(form, &owner)
	return owner, err
}

// UpdateRealOwner changes the provided fields of a real owner. With a new image the
// update is a multipart form like on creation, otherwise a JSON document
// {"realowner": {...}}.
func (a *API) UpdateRealOwner(ctx context.Context, id int64, u RealOwnerUpdate) (RealOwner, error) {
	var owner RealOwner
	item := a.realOwners(ctx).Item(id)
	if u.IBANImage == nil || len(u.IBANImage.Data) == 0 {
		_, err := item.Update(map[string]interface{}{PartRealOwner: u.Fields()}, &owner)
		return owner, err
	}
	record, err := client.JSONPart(PartRealOwner, u.Fields())
	if err != nil {
		return owner, err
	}
	var form client.Multipart
	form.Add(record, imagePart(u.IBANImage))
	_, err = item.UpdateMultipart(form, &owner)
	return owner, err
}

// DeleteRealOwner deletes a real owner
func (a *API) DeleteRealOwner(ctx context.Context, id int64) error {
	_, err := a.realOwners(ctx).Item(id).Delete()
	return err
}

func (a *API) realOwnerProperties(ctx context.Context) client.Collection {
	return a.with(ctx).Collection(PathRealOwnerProps)
}

// ListRealOwnerProperties returns the properties of a real owner, or of all real
// owners if realOwnerID is zero
func (a *API) ListRealOwnerProperties(ctx context.Context, realOwnerID int64) ([]RealOwnerProperty, error) {
	properties := []RealOwnerProperty{}
	_, err := a.realOwnerProperties(ctx).WithIDParameter("realOwnerId", realOwnerID).List(&properties)
	return properties, err
}

// GetRealOwnerProperty returns one real owner property
func (a *API) GetRealOwnerProperty(ctx context.Context, id int64) (RealOwnerProperty, error) {
	var property RealOwnerProperty
	_, err := a.realOwnerProperties(ctx).Item(id).Read(&property)
	return property, err
}

// CreateRealOwnerProperty creates a property for the real owner in.RealOwnerID
func (a *API) CreateRealOwnerProperty(ctx context.Context, in RealOwnerPropertyInput) (RealOwnerProperty, error) {
	var property RealOwnerProperty
	_, err := a.realOwnerProperties(ctx).Create(normalizeSubUnits(in), &property)
	return property, err
}

// UpdateRealOwnerProperty replaces a real owner property
func (a *API) UpdateRealOwnerProperty(ctx context.Context, id int64, in RealOwnerPropertyInput) (RealOwnerProperty, error) {
	var property RealOwnerProperty
	_, err := a.realOwnerProperties(ctx).Item(id).Update(normalizeSubUnits(in), &property)
	return property, err
}

// DeleteRealOwnerProperty deletes a real owner property
func (a *API) DeleteRealOwnerProperty(ctx context.Context, id int64) error {
	_, err := a.realOwnerProperties(ctx).Item(id).Delete()
	return err
}

// normalizeSubUnits sends an empty list instead of null
func normalizeSubUnits(in RealOwnerPropertyInput) RealOwnerPropertyInput {
	if in.SubUnits == nil {
		in.SubUnits = []SubUnitInput{}
	}
	return in
}
