package api

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/aqaar/core/kss"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the answer to a successful login
type LoginResponse struct {
	Token string `json:"token"`
}

// AdminRole is the role of an admin account
type AdminRole struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoleAdmin is the role name of admin accounts. The user list of the backend also
// contains other roles.
const RoleAdmin = "Admin"

// Admin is an admin account managed by the owner
type Admin struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      AdminRole `json:"role"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
	Active    bool      `json:"active"`
}

// PropertyStatus is the review status of a property listing
type PropertyStatus string

// The review states of a property
const (
	StatusPending  PropertyStatus = "PENDING"
	StatusApproved PropertyStatus = "APPROVED"
	StatusRejected PropertyStatus = "REJECTED"
)

// PropertyStatuses lists all review states
var PropertyStatuses = []PropertyStatus{StatusPending, StatusApproved, StatusRejected}

// ParsePropertyStatus parses a status case-insensitively
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	for _, status := range PropertyStatuses {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown property status %q", s)
}

// Feature is a property feature as resolved by the backend
type Feature struct {
	ID     int64  `json:"id"`
	NameAr string `json:"nameAr,omitempty"`
	NameEn string `json:"nameEn,omitempty"`
}

// Features are the features of a property. The backend sends either a list of
// feature ids or a list of feature objects; both decode into Features. Features
// decoded from ids carry no names.
type Features []Feature

// UnmarshalJSON accepts [1,2] as well as [{"id":1,...}]
func (f *Features) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err == nil {
		features := make(Features, len(ids))
		for i, id := range ids {
			features[i] = Feature{ID: id}
		}
		*f = features
		return nil
	}
	var objects []Feature
	if err := json.Unmarshal(data, &objects); err != nil {
		return fmt.Errorf("features must be ids or objects: %w", err)
	}
	*f = objects
	return nil
}

// IDs returns the feature ids
func (f Features) IDs() []int64 {
	ids := make([]int64, len(f))
	for i, feature := range f {
		ids[i] = feature.ID
	}
	return ids
}

// Property is a listing submitted by an admin for review
type Property struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Description      *string        `json:"description"`
	Price            float64        `json:"price"`
	Status           PropertyStatus `json:"status"`
	CityID           int64          `json:"cityId"`
	ConditionID      int64          `json:"conditionId"`
	AdminID          *int64         `json:"adminId"`
	FinishTypeID     int64          `json:"finishTypeId"`
	CreatedAt        string         `json:"createdAt"`
	UpdatedAt        string         `json:"updatedAt"`
	PropertyTypeID   int64          `json:"propertyTypeId"`
	RegionID         int64          `json:"regionId"`
	NeighborhoodID   int64          `json:"neighborhoodId"`
	ListingTypeID    int64          `json:"listingTypeId"`
	StreetAr         string         `json:"streetAr"`
	StreetEn         string         `json:"streetEn"`
	Longitude        float64        `json:"longitude"`
	Latitude         float64        `json:"latitude"`
	DescriptionAr    string         `json:"descriptionAr"`
	DescriptionEn    string         `json:"descriptionEn"`
	Area             float64        `json:"area"`
	RoomsCount       int            `json:"roomsCount"`
	BathroomsCount   int            `json:"bathroomsCount"`
	LivingroomsCount int            `json:"livingroomsCount"`
	FloorsCount      int            `json:"floorsCount"`
	BuildingAge      int            `json:"buildingAge"`
	StatusID         int64          `json:"statusId"`
	OwnerID          *int64         `json:"ownerId,omitempty"`
	CreatedBy        *int64         `json:"createdBy,omitempty"`
	AdminEmail       *string        `json:"adminEmail,omitempty"`
	ImageURLs        []string       `json:"imageUrls,omitempty"`
	Features         Features       `json:"features,omitempty"`
}

// RealOwner is a landlord whose properties the owner manages
type RealOwner struct {
	ID           int64  `json:"id"`
	FullName     string `json:"fullName"`
	NationalID   string `json:"nationalId"`
	PhoneNumber  string `json:"phoneNumber"`
	AccountBank  string `json:"accountBank"`
	IBAN         string `json:"iban"`
	IBANImageURL string `json:"ibanImageUrl"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// RealOwnerInput creates a real owner
type RealOwnerInput struct {
	FullName    string `json:"fullName"`
	NationalID  string `json:"nationalId"`
	PhoneNumber string `json:"phoneNumber"`
	AccountBank string `json:"accountBank"`
	IBAN        string `json:"iban"`
	// IBANImage is the optional picture of the bank document
	IBANImage *kss.Image `json:"-"`
}

// RealOwnerUpdate changes a real owner. Only non-nil fields are sent.
type RealOwnerUpdate struct {
	FullName     *string
	NationalID   *string
	PhoneNumber  *string
	AccountBank  *string
	IBAN         *string
	IBANImageURL *string
	// ClearIBANImage sends an explicit null image URL
	ClearIBANImage bool
	// IBANImage replaces the picture of the bank document
	IBANImage *kss.Image
}

// Fields returns the provided fields by their JSON names
func (u RealOwnerUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	set("fullName", u.FullName)
	set("nationalId", u.NationalID)
	set("phoneNumber", u.PhoneNumber)
	set("accountBank", u.AccountBank)
	set("iban", u.IBAN)
	set("ibanImageUrl", u.IBANImageURL)
	if u.ClearIBANImage {
		fields["ibanImageUrl"] = nil
	}
	return fields
}

// MarshalJSON writes only the provided fields
func (u RealOwnerUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Fields())
}

// Payment types of a sub unit
const (
	PaymentMonthly = "MONTHLY"
	PaymentYearly  = "YEARLY"
)

// SubUnit is an individually priced and payable part of a real owner property,
// for example one flat of a building
type SubUnit struct {
	ID                int64   `json:"id"`
	PropertyTypeID    int64   `json:"propertyTypeId"`
	PaymentType       string  `json:"paymentType"`
	CustomPaymentDays *int64  `json:"customPaymentDays"`
	PaymentValue      float64 `json:"paymentValue"`
	Price             float64 `json:"price"`
	PaidAmount        float64 `json:"paidAmount"`
	FullName          *string `json:"fullName"`
	PhoneNumber       *string `json:"phoneNumber"`
	NationalID        *string `json:"nationalId"`
	IsPaid            *bool   `json:"isPaid"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// RealOwnerProperty is a property record of a real owner
type RealOwnerProperty struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RegionID       int64     `json:"regionId"`
	CityID         int64     `json:"cityId"`
	NeighborhoodID int64     `json:"neighborhoodId"`
	ListingTypeID  int64     `json:"listingTypeId"`
	SubUnits       []SubUnit `json:"subUnits"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

// SubUnitInput is a sub unit of a created or updated real owner property
type SubUnitInput struct {
	PropertyTypeID    int64   `json:"propertyTypeId"`
	PaymentType       string  `json:"paymentType"`
	CustomPaymentDays *int64  `json:"customPaymentDays"`
	PaymentValue      float64 `json:"paymentValue"`
	Price             float64 `json:"price"`
	PaidAmount        float64 `json:"paidAmount"`
}

// RealOwnerPropertyInput creates or replaces a real owner property
type RealOwnerPropertyInput struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	RealOwnerID    int64          `json:"realOwnerId"`
	RegionID       int64          `json:"regionId"`
	CityID         int64          `json:"cityId"`
	NeighborhoodID int64          `json:"neighborhoodId"`
	ListingTypeID  int64          `json:"listingTypeId"`
	SubUnits       []SubUnitInput `json:"subUnits"`
}

// LookupItem is an entry of a lookup table
type LookupItem struct {
	ID     int64  `json:"id"`
	NameAr string `json:"nameAr"`
	NameEn string `json:"nameEn"`
}

// CityItem is a city of a region
type CityItem struct {
	LookupItem
	RegionID int64 `json:"regionId"`
}

// NeighborhoodItem is a neighborhood of a city
type NeighborhoodItem struct {
	LookupItem
	CityID int64 `json:"cityId"`
}

// LookupData holds all lookup tables
type LookupData struct {
	Regions              []LookupItem       `json:"regions"`
	Cities               []CityItem         `json:"cities"`
	Neighborhoods        []NeighborhoodItem `json:"neighborhoods"`
	PropertyTypes        []LookupItem       `json:"propertyTypes"`
	ListingTypes         []LookupItem       `json:"listingTypes"`
	PropertyConditions   []LookupItem       `json:"propertyConditions"`
	FinishingTypes       []LookupItem       `json:"finishingTypes"`
	PropertyStatusValues []LookupItem       `json:"propertyStatusValues"`
	PropertyFeatures     []LookupItem       `json:"propertyFeatures"`
}
