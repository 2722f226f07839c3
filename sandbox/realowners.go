package sandbox

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/handlers"

	"github.com/relabs-tech/aqaar/api"
)

// NoImage is the image URL the backend reports for real owners without an image
const NoImage = "string"

const maxFormMemory = 10 << 20

func (b *Backend) handleRealOwners() {
	// properties first, /real-owners/properties is no real owner id
	b.handleRealOwnerProperties()

	b.router.Handle(api.PathRealOwners, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.RealOwners())
	}))).Methods(http.MethodGet)

	b.router.HandleFunc(api.PathRealOwners+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		if i := b.realOwnerIndex(id); i >= 0 {
			writeJSON(w, http.StatusOK, b.realOwners[i])
			return
		}
		writeMessage(w, http.StatusNotFound, "message", "Real owner not found")
	}).Methods(http.MethodGet)

	b.router.HandleFunc(api.PathRealOwners, b.createRealOwner).Methods(http.MethodPost)
	b.router.HandleFunc(api.PathRealOwners+"/{id:[0-9]+}", b.updateRealOwner).Methods(http.MethodPut)

	b.router.HandleFunc(api.PathRealOwners+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.realOwnerIndex(id)
		if i < 0 {
			writeMessage(w, http.StatusNotFound, "message", "Real owner not found")
			return
		}
		b.realOwners = append(b.realOwners[:i], b.realOwners[i+1:]...)
		kept := b.ownerProperties[:0]
		for _, op := range b.ownerProperties {
			if op.realOwnerID != id {
				kept = append(kept, op)
			}
		}
		b.ownerProperties = kept
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
}

// formPart returns a part of a multipart form, whether it was sent as file or as
// plain field
func formPart(form *multipart.Form, name string) (data []byte, fileName string, found bool, err error) {
	if files := form.File[name]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, "", true, err
		}
		defer f.Close()
		data, err = io.ReadAll(f)
		return data, files[0].Filename, true, err
	}
	if values := form.Value[name]; len(values) > 0 {
		return []byte(values[0]), "", true, nil
	}
	return nil, "", false, nil
}

type uploadedImage struct {
	name string
	data []byte
}

// parseRealOwnerForm reads the realowner JSON part into record and returns the
// uploaded image, if any
func parseRealOwnerForm(r *http.Request, record interface{}) (*uploadedImage, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, err
	}
	data, _, found, err := formPart(r.MultipartForm, api.PartRealOwner)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("part '%s' is missing", api.PartRealOwner)
	}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("part '%s': %w", api.PartRealOwner, err)
	}
	image, fileName, found, err := formPart(r.MultipartForm, api.PartIBANImage)
	if err != nil || !found || fileName == "" || len(image) == 0 {
		return nil, err
	}
	return &uploadedImage{name: fileName, data: image}, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func validateRealOwner(o api.RealOwner) []fieldError {
	var errs []fieldError
	required := []struct{ field, value string }{
		{"fullName", o.FullName},
		{"nationalId", o.NationalID},
		{"phoneNumber", o.PhoneNumber},
		{"accountBank", o.AccountBank},
		{"iban", o.IBAN},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fieldError{Field: f.field, Message: f.field + " is required"})
		}
	}
	return errs
}

// ibanTaken must be called with the mutex held
func (b *Backend) ibanTaken(iban string, except int64) bool {
	for _, o := range b.realOwners {
		if o.ID != except && strings.EqualFold(o.IBAN, iban) {
			return true
		}
	}
	return false
}

// storeImage must be called with the mutex held
func (b *Backend) storeImage(ownerID int64, image *uploadedImage) string {
	url := "/uploads/iban/" + strconv.FormatInt(ownerID, 10) + "/" + image.name
	b.images[url] = image.data
	return url
}

func (b *Backend) createRealOwner(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		writeMessage(w, http.StatusUnsupportedMediaType, "message", "multipart form expected")
		return
	}
	var in api.RealOwner
	image, err := parseRealOwnerForm(r, &in)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "message", err.Error())
		return
	}
	if errs := validateRealOwner(in); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ibanTaken(in.IBAN, 0) {
		writeMessage(w, http.StatusConflict, "error", "IBAN already registered")
		return
	}
	owner := api.RealOwner{
		ID:           b.nextID(),
		FullName:     strings.TrimSpace(in.FullName),
		NationalID:   in.NationalID,
		PhoneNumber:  in.PhoneNumber,
		AccountBank:  in.AccountBank,
		IBAN:         in.IBAN,
		IBANImageURL: NoImage,
		CreatedAt:    b.timestamp(),
	}
	owner.UpdatedAt = owner.CreatedAt
	if image != nil {
		owner.IBANImageURL = b.storeImage(owner.ID, image)
	}
	b.realOwners = append(b.realOwners, owner)
	writeJSON(w, http.StatusCreated, owner)
}

func (b *Backend) updateRealOwner(w http.ResponseWriter, r *http.Request) {
	id, _ := idParameter(r)
	fields := map[string]interface{}{}
	var image *uploadedImage
	if isMultipart(r) {
		var err error
		if image, err = parseRealOwnerForm(r, &fields); err != nil {
			writeMessage(w, http.StatusBadRequest, "message", err.Error())
			return
		}
	} else {
		var body struct {
			RealOwner map[string]interface{} `json:"realowner"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RealOwner == nil {
			writeMessage(w, http.StatusBadRequest, "message", "body must be {\"realowner\": {...}}")
			return
		}
		fields = body.RealOwner
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.realOwnerIndex(id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "message", "Real owner not found")
		return
	}
	owner := b.realOwners[i]
	targets := map[string]*string{
		"fullName":     &owner.FullName,
		"nationalId":   &owner.NationalID,
		"phoneNumber":  &owner.PhoneNumber,
		"accountBank":  &owner.AccountBank,
		"iban":         &owner.IBAN,
		"ibanImageUrl": &owner.IBANImageURL,
	}
	for name, value := range fields {
		target, ok := targets[name]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			*target = v
		case nil:
			*target = ""
		default:
			writeFieldErrors(w, []fieldError{{Field: name, Message: name + " must be a string"}})
			return
		}
	}
	if errs := validateRealOwner(owner); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	if b.ibanTaken(owner.IBAN, owner.ID) {
		writeMessage(w, http.StatusConflict, "error", "IBAN already registered")
		return
	}
	if image != nil {
		owner.IBANImageURL = b.storeImage(owner.ID, image)
	}
	owner.UpdatedAt = b.timestamp()
	b.realOwners[i] = owner
	writeJSON(w, http.StatusOK, owner)
}

// realOwnerIndex must be called with the mutex held
func (b *Backend) realOwnerIndex(id int64) int {
	for i, o := range b.realOwners {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// RealOwners returns a copy of all real owners
func (b *Backend) RealOwners() []api.RealOwner {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.RealOwner{}, b.realOwners...)
}

// Image returns an uploaded image by its URL
func (b *Backend) Image(url string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.images[url]
	return data, ok
}

func (b *Backend) handleRealOwnerProperties() {
	b.router.Handle(api.PathRealOwnerProps, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var realOwnerID int64
		if p := r.URL.Query().Get("realOwnerId"); p != "" {
			var err error
			if realOwnerID, err = strconv.ParseInt(p, 10, 64); err != nil {
				writeMessage(w, http.StatusBadRequest, "message", "parameter 'realOwnerId': "+err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, b.RealOwnerProperties(realOwnerID))
	}))).Methods(http.MethodGet)

	b.router.HandleFunc(api.PathRealOwnerProps+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		if i := b.ownerPropertyIndex(id); i >= 0 {
			writeJSON(w, http.StatusOK, b.ownerProperties[i].property)
			return
		}
		writeMessage(w, http.StatusNotFound, "message", "Property not found")
	}).Methods(http.MethodGet)

	b.router.HandleFunc(api.PathRealOwnerProps, func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodePropertyInput(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.realOwnerIndex(in.RealOwnerID) < 0 {
			writeMessage(w, http.StatusNotFound, "message", "Real owner not found")
			return
		}
		now := b.timestamp()
		p := b.buildProperty(b.nextID(), in, now, now)
		b.ownerProperties = append(b.ownerProperties, ownerProperty{realOwnerID: in.RealOwnerID, property: p})
		writeJSON(w, http.StatusCreated, p)
	}).Methods(http.MethodPost)

	b.router.HandleFunc(api.PathRealOwnerProps+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		in, ok := decodePropertyInput(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.ownerPropertyIndex(id)
		if i < 0 {
			writeMessage(w, http.StatusNotFound, "message", "Property not found")
			return
		}
		realOwnerID := b.ownerProperties[i].realOwnerID
		if in.RealOwnerID != 0 && in.RealOwnerID != realOwnerID {
			if b.realOwnerIndex(in.RealOwnerID) < 0 {
				writeMessage(w, http.StatusNotFound, "message", "Real owner not found")
				return
			}
			realOwnerID = in.RealOwnerID
		}
		p := b.buildProperty(id, in, b.ownerProperties[i].property.CreatedAt, b.timestamp())
		b.ownerProperties[i] = ownerProperty{realOwnerID: realOwnerID, property: p}
		writeJSON(w, http.StatusOK, p)
	}).Methods(http.MethodPut)

	b.router.HandleFunc(api.PathRealOwnerProps+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.ownerPropertyIndex(id)
		if i < 0 {
			writeMessage(w, http.StatusNotFound, "message", "Property not found")
			return
		}
		b.ownerProperties = append(b.ownerProperties[:i], b.ownerProperties[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
}

func decodePropertyInput(w http.ResponseWriter, r *http.Request) (api.RealOwnerPropertyInput, bool) {
	var in api.RealOwnerPropertyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "message", "invalid request body")
		return in, false
	}
	var errs []fieldError
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, fieldError{Field: "title", Message: "title is required"})
	}
	for i, u := range in.SubUnits {
		if u.PaymentType != api.PaymentMonthly && u.PaymentType != api.PaymentYearly {
			errs = append(errs, fieldError{Field: fmt.Sprintf("subUnits[%d].paymentType", i), Message: "paymentType must be MONTHLY or YEARLY"})
		}
		if u.Price < 0 || u.PaidAmount < 0 {
			errs = append(errs, fieldError{Field: fmt.Sprintf("subUnits[%d]", i), Message: "amounts must not be negative"})
		}
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return in, false
	}
	return in, true
}

// buildProperty must be called with the mutex held. A sub unit is paid once the paid
// amount covers its price.
func (b *Backend) buildProperty(id int64, in api.RealOwnerPropertyInput, createdAt, updatedAt string) api.RealOwnerProperty {
	p := api.RealOwnerProperty{
		ID:             id,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		RegionID:       in.RegionID,
		CityID:         in.CityID,
		NeighborhoodID: in.NeighborhoodID,
		ListingTypeID:  in.ListingTypeID,
		SubUnits:       []api.SubUnit{},
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
	for _, u := range in.SubUnits {
		paid := u.Price > 0 && u.PaidAmount >= u.Price
		p.SubUnits = append(p.SubUnits, api.SubUnit{
			ID:                b.nextID(),
			PropertyTypeID:    u.PropertyTypeID,
			PaymentType:       u.PaymentType,
			CustomPaymentDays: u.CustomPaymentDays,
			PaymentValue:      u.PaymentValue,
			Price:             u.Price,
			PaidAmount:        u.PaidAmount,
			IsPaid:            &paid,
			CreatedAt:         updatedAt,
			UpdatedAt:         updatedAt,
		})
	}
	return p
}

// ownerPropertyIndex must be called with the mutex held
func (b *Backend) ownerPropertyIndex(id int64) int {
	for i, op := range b.ownerProperties {
		if op.property.ID == id {
			return i
		}
	}
	return -1
}

// RealOwnerProperties returns the properties of a real owner, or all properties if
// realOwnerID is zero
func (b *Backend) RealOwnerProperties(realOwnerID int64) []api.RealOwnerProperty {
	b.mu.Lock()
	defer b.mu.Unlock()
	properties := []api.RealOwnerProperty{}
	for _, op := range b.ownerProperties {
		if realOwnerID == 0 || op.realOwnerID == realOwnerID {
			properties = append(properties, op.property)
		}
	}
	return properties
}
