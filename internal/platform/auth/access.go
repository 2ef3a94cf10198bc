package auth

// Privilege names, lowest to highest.
const (
	PrivilegeViewer     = "viewer"
	PrivilegeEditor     = "editor"
	PrivilegeSupervisor = "supervisor"
	PrivilegeAdmin      = "admin"
	PrivilegeOverseer   = "overseer"
)

// Roles an account can hold.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleNurse   = "nurse"
)

var privilegeTiers = map[string]int{
	PrivilegeViewer:     1,
	PrivilegeEditor:     2,
	PrivilegeSupervisor: 3,
	PrivilegeAdmin:      4,
	PrivilegeOverseer:   5,
}

// Tier returns the numeric tier of a privilege name, or -1 when the name is
// not a known privilege.
func Tier(privilege string) int {
	if t, ok := privilegeTiers[privilege]; ok {
		return t
	}
	return -1
}

// ValidPrivilege reports whether p is one of the five known privileges.
func ValidPrivilege(p string) bool {
	return Tier(p) > 0
}

// HasPrivilege reports whether an account holding current may perform an
// operation that requires required. Overseers pass every check.
func HasPrivilege(current, required string) bool {
	ct := Tier(current)
	if ct < 0 {
		return false
	}
	if current == PrivilegeOverseer {
		return true
	}
	return ct >= Tier(required)
}

// Cluster is a named set of roles allowed through a gate.
type Cluster []string

var (
	AllRoles = Cluster{RolePatient, RoleDoctor, RoleNurse}
	Nurses   = Cluster{RoleNurse}
	Doctors  = Cluster{RoleDoctor}
	Staff    = Cluster{RoleDoctor, RoleNurse}
)

// InCluster reports whether role belongs to cluster.
func InCluster(role string, cluster Cluster) bool {
	for _, r := range cluster {
		if r == role {
			return true
		}
	}
	return false
}

// ValidRole reports whether role is a known account role.
func ValidRole(role string) bool {
	return InCluster(role, AllRoles)
}
