package sandbox

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/pointers"
)

// Credentials of the demo accounts
const (
	OwnerEmail    = "owner@aqaar.sa"
	OwnerPassword = "owner123"
	AdminPassword = "admin123"
)

// Ids of the demo records
const (
	OwnerID         int64 = 1
	ActiveAdminID   int64 = 2
	InactiveAdminID int64 = 4

	PendingPropertyID  int64 = 101
	ApprovedPropertyID int64 = 103
	RejectedPropertyID int64 = 105

	RealOwnerWithImageID int64 = 201
	RealOwnerNoImageID   int64 = 202
)

var (
	roleOwner = api.AdminRole{ID: 1, Name: RoleOwner}
	roleAdmin = api.AdminRole{ID: 2, Name: api.RoleAdmin}
)

func hash(password string) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}

// AddAccount adds a user account with a password. A zero ID is replaced by a generated
// one.
func (b *Backend) AddAccount(a api.Admin, password string) api.Admin {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.ID == 0 {
		a.ID = b.nextID()
	}
	if a.CreatedAt == "" {
		a.CreatedAt = b.timestamp()
		a.UpdatedAt = a.CreatedAt
	}
	b.accounts = append(b.accounts, &account{admin: a, password: hash(password)})
	return a
}

func (b *Backend) seed() {
	b.AddAccount(api.Admin{ID: OwnerID, Name: "Aqaar Owner", Email: OwnerEmail, Phone: "+966500000001", Role: roleOwner, Active: true}, OwnerPassword)
	b.AddAccount(api.Admin{ID: ActiveAdminID, Name: "Khalid Al-Harbi", Email: "khalid@aqaar.sa", Phone: "+966500000002", Role: roleAdmin, Active: true}, AdminPassword)
	b.AddAccount(api.Admin{ID: 3, Name: "Sara Al-Qahtani", Email: "sara@aqaar.sa", Phone: "+966500000003", Role: roleAdmin, Active: true}, AdminPassword)
	b.AddAccount(api.Admin{ID: InactiveAdminID, Name: "Fahad Al-Otaibi", Email: "fahad@aqaar.sa", Phone: "+966500000004", Role: roleAdmin, Active: false}, AdminPassword)

	adminID := pointers.Int64Ptr(ActiveAdminID)
	property := func(id int64, title string, status api.PropertyStatus, price float64, features api.Features) {
		b.AddProperty(api.Property{
			ID:             id,
			Title:          title,
			Description:    pointers.StringPtr(title),
			DescriptionAr:  title,
			DescriptionEn:  title,
			Price:          price,
			Status:         status,
			RegionID:       1,
			CityID:         1,
			NeighborhoodID: 1,
			PropertyTypeID: 1,
			ListingTypeID:  1,
			ConditionID:    1,
			FinishTypeID:   1,
			StatusID:       1,
			AdminID:        adminID,
			AdminEmail:     pointers.StringPtr("khalid@aqaar.sa"),
			StreetAr:       "طريق الملك فهد",
			StreetEn:       "King Fahd Road",
			Latitude:       24.7136,
			Longitude:      46.6753,
			Area:           180,
			RoomsCount:     3,
			BathroomsCount: 2,
			FloorsCount:    1,
			BuildingAge:    5,
			Features:       features,
		})
	}
	property(PendingPropertyID, "Apartment in Al Olaya", api.StatusPending, 850000, api.Features{{ID: 1}, {ID: 2}})
	property(102, "Villa in Al Malqa", api.StatusPending, 2400000, nil)
	property(ApprovedPropertyID, "Shop on Tahlia Street", api.StatusApproved, 1200000, api.Features{{ID: 1, NameAr: "موقف سيارات", NameEn: "Parking"}})
	property(104, "Apartment in Al Rawdah", api.StatusApproved, 650000, nil)
	property(RejectedPropertyID, "Land in Al Aziziyah", api.StatusRejected, 300000, nil)
	property(106, "Duplex in Al Olaya", api.StatusRejected, 1750000, nil)

	now := b.timestamp()
	b.realOwners = []api.RealOwner{
		{ID: RealOwnerWithImageID, FullName: "Abdullah Al-Saud", NationalID: "1010101010", PhoneNumber: "+966511111111",
			AccountBank: "Al Rajhi Bank", IBAN: "SA0380000000608010167519", IBANImageURL: "/uploads/iban/201/iban.png", CreatedAt: now, UpdatedAt: now},
		{ID: RealOwnerNoImageID, FullName: "Mona Al-Zahrani", NationalID: "1020202020", PhoneNumber: "+966522222222",
			AccountBank: "Saudi National Bank", IBAN: "SA4420000001234567891234", IBANImageURL: NoImage, CreatedAt: now, UpdatedAt: now},
	}
	b.images["/uploads/iban/201/iban.png"] = []byte("\x89PNG\r\n\x1a\n")

	b.mu.Lock()
	b.ownerProperties = []ownerProperty{
		{realOwnerID: RealOwnerWithImageID, property: b.buildProperty(301, api.RealOwnerPropertyInput{
			Title: "Al Olaya Residence", Description: "Two flats", RegionID: 1, CityID: 1, NeighborhoodID: 1, ListingTypeID: 2,
			SubUnits: []api.SubUnitInput{
				{PropertyTypeID: 1, PaymentType: api.PaymentMonthly, PaymentValue: 4000, Price: 48000, PaidAmount: 48000},
				{PropertyTypeID: 1, PaymentType: api.PaymentYearly, PaymentValue: 36000, Price: 36000, PaidAmount: 12000},
			},
		}, now, now)},
		{realOwnerID: RealOwnerWithImageID, property: b.buildProperty(302, api.RealOwnerPropertyInput{
			Title: "Tahlia Shop", RegionID: 1, CityID: 1, NeighborhoodID: 2, ListingTypeID: 2,
			SubUnits: []api.SubUnitInput{
				{PropertyTypeID: 3, PaymentType: api.PaymentYearly, PaymentValue: 60000, Price: 60000, PaidAmount: 60000},
			},
		}, now, now)},
		{realOwnerID: RealOwnerNoImageID, property: b.buildProperty(303, api.RealOwnerPropertyInput{
			Title: "Jeddah Plot", RegionID: 2, CityID: 2, NeighborhoodID: 3, ListingTypeID: 1,
		}, now, now)},
	}
	b.mu.Unlock()

	item := func(id int64, ar, en string) api.LookupItem { return api.LookupItem{ID: id, NameAr: ar, NameEn: en} }
	b.lookup = api.LookupData{
		Regions: []api.LookupItem{item(1, "منطقة الرياض", "Riyadh Region"), item(2, "منطقة مكة المكرمة", "Makkah Region")},
		Cities: []api.CityItem{
			{LookupItem: item(1, "الرياض", "Riyadh"), RegionID: 1},
			{LookupItem: item(2, "جدة", "Jeddah"), RegionID: 2},
			{LookupItem: item(3, "مكة المكرمة", "Makkah"), RegionID: 2},
		},
		Neighborhoods: []api.NeighborhoodItem{
			{LookupItem: item(1, "العليا", "Al Olaya"), CityID: 1},
			{LookupItem: item(2, "الملقا", "Al Malqa"), CityID: 1},
			{LookupItem: item(3, "الروضة", "Al Rawdah"), CityID: 2},
			{LookupItem: item(4, "العزيزية", "Al Aziziyah"), CityID: 3},
		},
		PropertyTypes:        []api.LookupItem{item(1, "شقة", "Apartment"), item(2, "فيلا", "Villa"), item(3, "محل", "Shop")},
		ListingTypes:         []api.LookupItem{item(1, "للبيع", "For Sale"), item(2, "للإيجار", "For Rent")},
		PropertyConditions:   []api.LookupItem{item(1, "جديد", "New"), item(2, "مستعمل", "Used")},
		FinishingTypes:       []api.LookupItem{item(1, "تشطيب كامل", "Fully finished"), item(2, "نصف تشطيب", "Semi finished")},
		PropertyStatusValues: []api.LookupItem{item(1, "جاهز", "Ready"), item(2, "تحت الإنشاء", "Under construction")},
		PropertyFeatures:     []api.LookupItem{item(1, "موقف سيارات", "Parking"), item(2, "مصعد", "Elevator"), item(3, "مسبح", "Pool")},
	}
}
