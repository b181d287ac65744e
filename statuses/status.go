// Package statuses defines the fixed account-status table referenced by
// access-token claims and the email-confirmation flow.
package statuses

// Status identifiers. Part of the token claim format; do not renumber.
const (
	IDActive   = 1
	IDInactive = 2
)

// Status names as they appear in the "status" claim.
const (
	NameActive   = "active"
	NameInactive = "inactive"
)

// Status is the {id, name} pair carried inside access tokens.
type Status struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Active returns the status of a fully confirmed account.
func Active() Status {
	return Status{ID: IDActive, Name: NameActive}
}

// Inactive returns the status of an account awaiting email confirmation.
func Inactive() Status {
	return Status{ID: IDInactive, Name: NameInactive}
}

// FromID resolves a status id to the full {id, name} pair.
func FromID(id int) Status {
	switch id {
	case IDActive:
		return Active()
	case IDInactive:
		return Inactive()
	default:
		return Status{ID: id}
	}
}
