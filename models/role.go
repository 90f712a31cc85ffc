package models

type Role string

const (
	RoleUser  Role = "user"
	RoleHR    Role = "hr"
	RoleAdmin Role = "admin"
)

// ParseRole maps a registration role string to a Role. An empty string is a
// plain user.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "", RoleUser:
		return RoleUser, true
	case RoleHR:
		return RoleHR, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// CanHandleComplaints reports whether the role may be assigned complaints and
// act on them. It is the single place that decides handler access.
func (r Role) CanHandleComplaints() bool {
	return r == RoleHR || r == RoleAdmin
}

// NeedsHRProfile reports whether a user with this role gets an HR profile at
// registration.
func (r Role) NeedsHRProfile() bool {
	return r.CanHandleComplaints()
}
