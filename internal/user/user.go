// Package user defines the user account model used throughout the application,
// particularly for authentication, quota checks, and link ownership.
package user

// User represents a registered account.
//
// The owned-links collection is deliberately not stored on the struct: it is a
// derived relation fetched on demand from storage (see CountUserLinks and
// GetLinksByUserID on the storage interface), which keeps the entity graph
// acyclic.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"userId"`

	// Username is unique and matched case-sensitively.
	Username string `json:"username"`

	// PasswordHash is an opaque credential produced by the hasher package.
	// It must never be serialized into a response body.
	PasswordHash string `json:"-"`

	// IsPro relaxes the link quota.
	IsPro bool `json:"isPro"`

	// IsAdmin grants cross-account access and also relaxes the quota.
	IsAdmin bool `json:"isAdmin"`
}

// IsPrivileged reports whether the account is exempt from the link quota.
// Either flag alone is sufficient.
func (u *User) IsPrivileged() bool {
	return u.IsPro || u.IsAdmin
}
