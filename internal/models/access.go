package models

// AccessLevel is how much of an application area a role may use.
type AccessLevel string

// Access levels. Only AccessAll and AccessAdmin grant use of an area; the
// others are labels kept for role descriptions.
const (
	AccessAll        AccessLevel = "all"
	AccessMarketing  AccessLevel = "marketing"
	AccessSales      AccessLevel = "sales"
	AccessAdmin      AccessLevel = "admin"
	AccessRestricted AccessLevel = "restricted"
	AccessNone       AccessLevel = "none"
)

// AccessLevels lists every valid level.
var AccessLevels = []AccessLevel{AccessAll, AccessMarketing, AccessSales, AccessAdmin, AccessRestricted, AccessNone}

// Grants reports whether l allows using an area.
func (l AccessLevel) Grants() bool {
	return l == AccessAll || l == AccessAdmin
}

// Area is a permission-controlled part of the application.
type Area string

// Areas.
const (
	AreaEmailBuilder      Area = "emailBuilder"
	AreaProposalGenerator Area = "proposalGenerator"
	AreaSettings          Area = "settings"
	AreaAnalytics         Area = "analytics"
)

// Permissions holds one access level per area.
type Permissions struct {
	EmailBuilder      AccessLevel `json:"emailBuilder"`
	ProposalGenerator AccessLevel `json:"proposalGenerator"`
	Settings          AccessLevel `json:"settings"`
	Analytics         AccessLevel `json:"analytics"`
}

// Level returns the access level for area.
func (p Permissions) Level(area Area) (AccessLevel, bool) {
	switch area {
	case AreaEmailBuilder:
		return p.EmailBuilder, true
	case AreaProposalGenerator:
		return p.ProposalGenerator, true
	case AreaSettings:
		return p.Settings, true
	case AreaAnalytics:
		return p.Analytics, true
	}
	return "", false
}

// With returns a copy of p with area set to level. Unknown areas leave p
// unchanged.
func (p Permissions) With(area Area, level AccessLevel) Permissions {
	switch area {
	case AreaEmailBuilder:
		p.EmailBuilder = level
	case AreaProposalGenerator:
		p.ProposalGenerator = level
	case AreaSettings:
		p.Settings = level
	case AreaAnalytics:
		p.Analytics = level
	}
	return p
}

// UserRole is a named set of per-area permissions.
type UserRole struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Permissions Permissions `json:"permissions"`
}

// User is a person who can be granted a role.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	RoleID string `json:"roleId"`
}

// AccessState is the persisted permission aggregate. Access holds the
// permissions of the most recently applied role. In AdminMode every
// permission check passes.
type AccessState struct {
	Access       Permissions `json:"access"`
	Roles        []UserRole  `json:"userRoles"`
	Users        []User      `json:"users"`
	ActiveRoleID string      `json:"activeRoleId,omitempty"`
	AdminMode    bool        `json:"isAdminMode"`
}

// Clone returns a copy of s with its own, never nil, slices.
func (s AccessState) Clone() AccessState {
	out := s
	out.Roles = make([]UserRole, len(s.Roles))
	copy(out.Roles, s.Roles)
	out.Users = make([]User, len(s.Users))
	copy(out.Users, s.Users)
	return out
}
