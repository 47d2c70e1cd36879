package link

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseID converts an opaque string identifier into the store's native id.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return id, nil
}

// ParseIDs parses every id; one malformed id fails the whole call.
func ParseIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := ParseID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// IDStrings renders ids in canonical form so two values for the same
// underlying id compare equal as strings.
func IDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// SameID reports identifier equality.
func SameID(a, b uuid.UUID) bool {
	return a == b
}
