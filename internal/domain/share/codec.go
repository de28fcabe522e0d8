// Package share implements the share-link subsystem: encoding a selected
// record set into a link token, the owner-side access window, and the
// anonymous shared-view resolver.
package share

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("share token contains no valid record ids")
	ErrEmptySelection = errors.New("share selection is empty")
)

// canonicalUUID matches 8-4-4-4-12 hex groups with the version nibble
// constrained to 1-5 and the variant nibble to 8/9/a/b. Segments failing
// this are dropped at decode time as a defense against injected path
// garbage, not as a security boundary.
var canonicalUUID = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// EncodeToken joins the selected record ids into a single comma-delimited
// path segment. The token is the plaintext id list: no encryption, no
// signature, no embedded expiry.
func EncodeToken(ids []uuid.UUID) (string, error) {
	if len(ids) == 0 {
		return "", ErrEmptySelection
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ","), nil
}

// DecodeToken splits a token on commas, drops empty segments, and keeps only
// canonical UUIDs. Partial validity is tolerated: "<valid>,garbage" decodes
// to the one valid id. Only a token with zero surviving ids fails.
func DecodeToken(token string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, seg := range strings.Split(token, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" || !canonicalUUID.MatchString(seg) {
			continue
		}
		id, err := uuid.Parse(seg)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrInvalidToken
	}
	return ids, nil
}
