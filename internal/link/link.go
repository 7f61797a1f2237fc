// Package link defines the short-link model and the deterministic
// identifier-derivation scheme.
package link

import (
	"crypto/md5"
	"encoding/base64"
	"time"

	"github.com/valerienguyen169/Shrink-Ray/internal/user"
)

// IDLength is the fixed length of a derived link identifier.
const IDLength = 9

// Link is a stored mapping from a short identifier to an original URL
// plus usage metadata.
type Link struct {
	// ID is derived deterministically from the original URL and the owner's
	// user ID, see DeriveID.
	ID string `json:"linkId"`

	// OriginalURL is stored as given, without validation.
	OriginalURL string `json:"originalUrl"`

	// NumHits counts resolutions. Starts at zero and only grows.
	NumHits int64 `json:"numHits"`

	// LastAccessedOn is set at creation and updated on every resolve.
	LastAccessedOn time.Time `json:"lastAccessedOn"`

	// Owner is the owning account, eagerly resolved on reads that feed
	// authorization decisions.
	Owner *user.User `json:"user,omitempty"`
}

// DeriveID computes the short identifier for the given original URL and owner.
//
// The scheme is an MD5 digest over the concatenation of both inputs, encoded
// with the URL-safe base64 alphabet and truncated to IDLength characters.
// MD5 is used only for uniform short-code distribution, not for security.
// The same (originalURL, userID) pair always yields the same identifier, so a
// repeat shorten by the same user collides at the primary key instead of
// producing a second record.
func DeriveID(originalURL, userID string) string {
	digest := md5.Sum([]byte(originalURL + userID))
	encoded := base64.RawURLEncoding.EncodeToString(digest[:])

	return encoded[:IDLength]
}
