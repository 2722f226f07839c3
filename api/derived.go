package api

import (
	"strings"

	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/pointers"
)

// placeholderImage is what the backend reports for a real owner created without an
// image
const placeholderImage = "string"

// HasIBANImage returns true if the real owner has an IBAN image
func (o RealOwner) HasIBANImage() bool {
	url := strings.TrimSpace(o.IBANImageURL)
	return url != "" && url != placeholderImage
}

// Paid returns true if the sub unit is marked as paid
func (s SubUnit) Paid() bool {
	return pointers.SafeBool(s.IsPaid)
}

// Tenant returns the name of the tenant, or "" if the sub unit is not rented
func (s SubUnit) Tenant() string {
	return pointers.SafeString(s.FullName)
}

// TotalPrice sums the prices of all sub units
func (p RealOwnerProperty) TotalPrice() float64 {
	var total float64
	for _, u := range p.SubUnits {
		total += u.Price
	}
	return total
}

// TotalPaid sums the paid amounts of all sub units
func (p RealOwnerProperty) TotalPaid() float64 {
	var total float64
	for _, u := range p.SubUnits {
		total += u.PaidAmount
	}
	return total
}

// Remaining is the total price minus the paid amounts. Overpayments make it
// negative.
func (p RealOwnerProperty) Remaining() float64 {
	return p.TotalPrice() - p.TotalPaid()
}

// IsFullyPaid returns true if every sub unit is marked as paid. A property without
// sub units is not fully paid.
func (p RealOwnerProperty) IsFullyPaid() bool {
	if len(p.SubUnits) == 0 {
		return false
	}
	for _, u := range p.SubUnits {
		if !u.Paid() {
			return false
		}
	}
	return true
}

// Input returns the property as input for an update
func (p RealOwnerProperty) Input(realOwnerID int64) RealOwnerPropertyInput {
	in := RealOwnerPropertyInput{
		Title:          p.Title,
		Description:    p.Description,
		RealOwnerID:    realOwnerID,
		RegionID:       p.RegionID,
		CityID:         p.CityID,
		NeighborhoodID: p.NeighborhoodID,
		ListingTypeID:  p.ListingTypeID,
		SubUnits:       make([]SubUnitInput, len(p.SubUnits)),
	}
	for i, u := range p.SubUnits {
		in.SubUnits[i] = SubUnitInput{
			PropertyTypeID:    u.PropertyTypeID,
			PaymentType:       u.PaymentType,
			CustomPaymentDays: u.CustomPaymentDays,
			PaymentValue:      u.PaymentValue,
			Price:             u.Price,
			PaidAmount:        u.PaidAmount,
		}
	}
	return in
}

// Name returns the name of the item in lang
func (l LookupItem) Name(lang string) string {
	if i18n.Normalize(lang) == i18n.English {
		return l.NameEn
	}
	return l.NameAr
}

func findName(items []LookupItem, id int64, lang string) string {
	for _, item := range items {
		if item.ID == id {
			return item.Name(lang)
		}
	}
	return ""
}

// Region returns the name of a region, or "" if it is unknown
func (d LookupData) Region(id int64, lang string) string {
	return findName(d.Regions, id, lang)
}

// City returns the name of a city, or "" if it is unknown
func (d LookupData) City(id int64, lang string) string {
	for _, c := range d.Cities {
		if c.ID == id {
			return c.Name(lang)
		}
	}
	return ""
}

// Neighborhood returns the name of a neighborhood, or "" if it is unknown
func (d LookupData) Neighborhood(id int64, lang string) string {
	for _, n := range d.Neighborhoods {
		if n.ID == id {
			return n.Name(lang)
		}
	}
	return ""
}

// PropertyType returns the name of a property type, or "" if it is unknown
func (d LookupData) PropertyType(id int64, lang string) string {
	return findName(d.PropertyTypes, id, lang)
}

// ListingType returns the name of a listing type, or "" if it is unknown
func (d LookupData) ListingType(id int64, lang string) string {
	return findName(d.ListingTypes, id, lang)
}

// Condition returns the name of a property condition, or "" if it is unknown
func (d LookupData) Condition(id int64, lang string) string {
	return findName(d.PropertyConditions, id, lang)
}

// FinishingType returns the name of a finishing type, or "" if it is unknown
func (d LookupData) FinishingType(id int64, lang string) string {
	return findName(d.FinishingTypes, id, lang)
}

// StatusValue returns the name of a property status value, or "" if it is unknown
func (d LookupData) StatusValue(id int64, lang string) string {
	return findName(d.PropertyStatusValues, id, lang)
}

// FeatureNames returns the names of the features. Names sent along with the property
// take precedence over the lookup table.
func (d LookupData) FeatureNames(features Features, lang string) []string {
	names := make([]string, 0, len(features))
	for _, f := range features {
		name := LookupItem{ID: f.ID, NameAr: f.NameAr, NameEn: f.NameEn}.Name(lang)
		if name == "" {
			name = findName(d.PropertyFeatures, f.ID, lang)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// CitiesOf returns the cities of a region
func (d LookupData) CitiesOf(regionID int64) []CityItem {
	var cities []CityItem
	for _, c := range d.Cities {
		if c.RegionID == regionID {
			cities = append(cities, c)
		}
	}
	return cities
}

// NeighborhoodsOf returns the neighborhoods of a city
func (d LookupData) NeighborhoodsOf(cityID int64) []NeighborhoodItem {
	var neighborhoods []NeighborhoodItem
	for _, n := range d.Neighborhoods {
		if n.CityID == cityID {
			neighborhoods = append(neighborhoods, n)
		}
	}
	return neighborhoods
}

// Name returns the name of the entry id of a lookup table, for example
// d.Name(LookupCities, 3, "en"). Unknown tables and ids yield "".
func (d LookupData) Name(table string, id int64, lang string) string {
	switch table {
	case LookupRegions:
		return d.Region(id, lang)
	case LookupCities:
		return d.City(id, lang)
	case LookupNeighborhoods:
		return d.Neighborhood(id, lang)
	case LookupPropertyTypes:
		return d.PropertyType(id, lang)
	case LookupListingTypes:
		return d.ListingType(id, lang)
	case LookupPropertyConditions:
		return d.Condition(id, lang)
	case LookupFinishingTypes:
		return d.FinishingType(id, lang)
	case LookupPropertyStatusValues:
		return d.StatusValue(id, lang)
	case LookupPropertyFeatures:
		return findName(d.PropertyFeatures, id, lang)
	}
	return ""
}
