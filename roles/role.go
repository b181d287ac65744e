// Package roles defines the fixed role table referenced by access-token claims.
package roles

// Role identifiers. The numeric ids are part of the token claim format and
// must not be renumbered.
const (
	IDUser  = 1
	IDAdmin = 2
)

// Role names as they appear in the "role" claim.
const (
	NameUser  = "user"
	NameAdmin = "admin"
)

// Role is the {id, name} pair carried inside access tokens. Only the id is
// authoritative; the name is derived.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// User returns the default role assigned to self-registered accounts.
func User() Role {
	return Role{ID: IDUser, Name: NameUser}
}

// Admin returns the administrative role.
func Admin() Role {
	return Role{ID: IDAdmin, Name: NameAdmin}
}

// FromID resolves a role id to the full {id, name} pair. Unknown ids keep the
// id and an empty name rather than failing, matching how tokens minted by
// older deployments are tolerated.
func FromID(id int) Role {
	switch id {
	case IDAdmin:
		return Admin()
	case IDUser:
		return User()
	default:
		return Role{ID: id}
	}
}
