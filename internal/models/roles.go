package models

// Capabilities describes what a role may do. Validation and the status
// machine both read this table instead of branching on roles themselves.
type Capabilities struct {
	// MaxDuration is the longest booking in hours.
	MaxDuration int
	// AllowedCategories limits what the role may book for.
	AllowedCategories []Category
	// AutoApprove creates bookings directly in Approved.
	AutoApprove bool
	// ModeratesAll lets the role approve or reject any pending booking.
	ModeratesAll bool
	// ModeratesRoles lists requester roles whose pending bookings the role may decide.
	ModeratesRoles []Role
	// CancelsAny lets the role cancel bookings it does not own.
	CancelsAny bool
	// EditsRoles lists requester roles whose booking times the role may change.
	EditsRoles []Role
	// ManagesUsers allows updating and removing other accounts.
	ManagesUsers bool
	// Deletable is false for accounts that can never be removed.
	Deletable bool
	// SelfRegister allows creating this role through public registration.
	SelfRegister bool
	// ProfileField names the role-specific profile attribute, if any.
	ProfileField string
	// SeesRoles lists requester roles whose bookings appear in list views.
	// A nil value with SeesAll false restricts views to the user's own bookings.
	SeesRoles []Role
	SeesAll   bool
}

const (
	ProfileFieldSection    = "section"
	ProfileFieldDepartment = "department"
)

var roleTable = map[Role]Capabilities{
	RoleStudent: {
		MaxDuration:       2,
		AllowedCategories: []Category{CategoryStudySession, CategoryClubEvent, CategoryDefense},
		Deletable:         true,
		SelfRegister:      true,
		ProfileField:      ProfileFieldSection,
	},
	RoleFaculty: {
		MaxDuration:       4,
		AllowedCategories: []Category{CategoryClass, CategorySeminar, CategoryDefense, CategoryOther},
		ModeratesRoles:    []Role{RoleStudent},
		Deletable:         true,
		SelfRegister:      true,
		ProfileField:      ProfileFieldDepartment,
		SeesRoles:         []Role{RoleFaculty, RoleStudent},
	},
	RoleAdmin: {
		MaxDuration:       8,
		AllowedCategories: AllCategories,
		AutoApprove:       true,
		ModeratesAll:      true,
		CancelsAny:        true,
		EditsRoles:        []Role{RoleStudent},
		ManagesUsers:      true,
		SeesAll:           true,
	},
}

// CapabilitiesFor returns the capability row for role. Unknown roles get a
// zero row, which permits nothing.
func CapabilitiesFor(role Role) Capabilities {
	return roleTable[role]
}

func (c Capabilities) AllowsCategory(cat Category) bool {
	for _, allowed := range c.AllowedCategories {
		if allowed == cat {
			return true
		}
	}
	return false
}

func (c Capabilities) Moderates(requester Role) bool {
	return c.ModeratesAll || containsRole(c.ModeratesRoles, requester)
}

func (c Capabilities) Edits(requester Role) bool {
	return containsRole(c.EditsRoles, requester)
}

func (c Capabilities) Sees(requester Role) bool {
	return c.SeesAll || containsRole(c.SeesRoles, requester)
}

func containsRole(roles []Role, r Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
