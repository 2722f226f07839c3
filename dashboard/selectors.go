package dashboard

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/aqaar/api"
)

// AdminFilter selects a partition of the admin list
type AdminFilter string

// Admin filters
const (
	AdminsAll      AdminFilter = "ALL"
	AdminsActive   AdminFilter = "ACTIVE"
	AdminsInactive AdminFilter = "INACTIVE"
)

// ParseAdminFilter parses ALL, ACTIVE or INACTIVE in any case
func ParseAdminFilter(s string) (AdminFilter, error) {
	for _, f := range []AdminFilter{AdminsAll, AdminsActive, AdminsInactive} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown admin filter %q", s)
}

// AdminPartitions splits an admin list by status. Active and Inactive are disjoint
// and together hold every admin of All.
type AdminPartitions struct {
	All      []api.Admin
	Active   []api.Admin
	Inactive []api.Admin
}

// ByFilter returns the partition selected by f. Unknown filters select All.
func (p AdminPartitions) ByFilter(f AdminFilter) []api.Admin {
	switch f {
	case AdminsActive:
		return p.Active
	case AdminsInactive:
		return p.Inactive
	}
	return p.All
}

// AdminCounts are the sizes of the admin partitions
type AdminCounts struct {
	All      int `json:"all"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// OnlyAdmins drops every account whose role is not Admin, in particular the owner
func OnlyAdmins(accounts []api.Admin) []api.Admin {
	admins := make([]api.Admin, 0, len(accounts))
	for _, a := range accounts {
		if a.Role.Name == api.RoleAdmin {
			admins = append(admins, a)
		}
	}
	return admins
}

// PartitionAdmins splits admins by their active flag, keeping their order
func PartitionAdmins(admins []api.Admin) AdminPartitions {
	p := AdminPartitions{
		All:      append([]api.Admin{}, admins...),
		Active:   []api.Admin{},
		Inactive: []api.Admin{},
	}
	for _, a := range admins {
		if a.Active {
			p.Active = append(p.Active, a)
		} else {
			p.Inactive = append(p.Inactive, a)
		}
	}
	return p
}

// CountAdmins counts the admin partitions
func CountAdmins(admins []api.Admin) AdminCounts {
	p := PartitionAdmins(admins)
	return AdminCounts{All: len(p.All), Active: len(p.Active), Inactive: len(p.Inactive)}
}

// CanDelete returns true if the view offers to delete the admin. Only inactive admins
// can be deleted.
func CanDelete(admin api.Admin) bool {
	return !admin.Active
}

// PropertyFilter selects a partition of the property list, either ALL or one of the
// review statuses
type PropertyFilter string

// PropertiesAll selects every property
const PropertiesAll PropertyFilter = "ALL"

// ParsePropertyFilter parses ALL or a review status in any case
func ParsePropertyFilter(s string) (PropertyFilter, error) {
	if strings.EqualFold(s, string(PropertiesAll)) {
		return PropertiesAll, nil
	}
	status, err := api.ParsePropertyStatus(s)
	if err != nil {
		return "", err
	}
	return PropertyFilter(status), nil
}

// PropertyPartitions splits a property list by review status. Pending, Approved and
// Rejected are disjoint and together hold every property of All with a known status.
type PropertyPartitions struct {
	All      []api.Property
	Pending  []api.Property
	Approved []api.Property
	Rejected []api.Property
}

// ByFilter returns the partition selected by f. Unknown filters select All.
func (p PropertyPartitions) ByFilter(f PropertyFilter) []api.Property {
	switch api.PropertyStatus(f) {
	case api.StatusPending:
		return p.Pending
	case api.StatusApproved:
		return p.Approved
	case api.StatusRejected:
		return p.Rejected
	}
	return p.All
}

// PropertyCounts are the sizes of the property partitions
type PropertyCounts struct {
	All      int `json:"all"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// PartitionProperties splits properties by review status, keeping their order
func PartitionProperties(properties []api.Property) PropertyPartitions {
	p := PropertyPartitions{
		All:      append([]api.Property{}, properties...),
		Pending:  []api.Property{},
		Approved: []api.Property{},
		Rejected: []api.Property{},
	}
	for _, property := range properties {
		switch property.Status {
		case api.StatusPending:
			p.Pending = append(p.Pending, property)
		case api.StatusApproved:
			p.Approved = append(p.Approved, property)
		case api.StatusRejected:
			p.Rejected = append(p.Rejected, property)
		}
	}
	return p
}

// CountProperties counts the property partitions
func CountProperties(properties []api.Property) PropertyCounts {
	p := PartitionProperties(properties)
	return PropertyCounts{All: len(p.All), Pending: len(p.Pending), Approved: len(p.Approved), Rejected: len(p.Rejected)}
}

// PropertySummary aggregates the payments of real owner properties
type PropertySummary struct {
	Properties int     `json:"properties"`
	SubUnits   int     `json:"subUnits"`
	TotalPrice float64 `json:"totalPrice"`
	TotalPaid  float64 `json:"totalPaid"`
	Remaining  float64 `json:"remaining"`
	FullyPaid  int     `json:"fullyPaid"`
}

// Summarize aggregates the payments of properties
func Summarize(properties []api.RealOwnerProperty) PropertySummary {
	s := PropertySummary{Properties: len(properties)}
	for _, p := range properties {
		s.SubUnits += len(p.SubUnits)
		s.TotalPrice += p.TotalPrice()
		s.TotalPaid += p.TotalPaid()
		if p.IsFullyPaid() {
			s.FullyPaid++
		}
	}
	s.Remaining = s.TotalPrice - s.TotalPaid
	return s
}
