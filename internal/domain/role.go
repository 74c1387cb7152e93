package domain

// Role is the access level of a profile inside its tenant.
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleAide       Role = "aide"
	RolePolitician Role = "politician"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleAide, RolePolitician, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether r works for the office (aide, politician or admin).
func (r Role) IsStaff() bool {
	switch r {
	case RoleAide, RolePolitician, RoleAdmin:
		return true
	default:
		return false
	}
}

// Capability checks. Every call site consults these instead of comparing
// role strings inline.

func (r Role) CanReadAllTickets() bool        { return r.IsStaff() }
func (r Role) CanChangeStatus() bool          { return r.IsStaff() }
func (r Role) CanAssign() bool                { return r.IsStaff() }
func (r Role) CanDragKanban() bool            { return r.IsStaff() }
func (r Role) CanSendBroadcast() bool         { return r.IsStaff() }
func (r Role) CanWriteInternalComments() bool { return r.IsStaff() }
func (r Role) CanReadInternalComments() bool  { return r.IsStaff() }
func (r Role) CanManageCategories() bool      { return r.IsStaff() }
func (r Role) CanManageEvents() bool          { return r.IsStaff() }
func (r Role) CanSeeUnpublishedEvents() bool  { return r.IsStaff() }
func (r Role) CanViewTenantNotifications() bool {
	return r.IsStaff()
}

// CanManageOffice covers the office settings form (branding, contact block).
func (r Role) CanManageOffice() bool {
	return r == RolePolitician || r == RoleAdmin
}

// CanManageProfiles covers role changes and deactivation of other profiles.
func (r Role) CanManageProfiles() bool {
	return r == RolePolitician || r == RoleAdmin
}
