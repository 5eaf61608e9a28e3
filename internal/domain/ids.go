package domain

import "github.com/google/uuid"

// NewID returns a fresh storage-generated identifier.
func NewID() string { return uuid.NewString() }

// IsStorageID reports whether s is an identifier the store could have
// generated: a canonical, lowercase, hyphenated UUID. Client-side placeholders
// such as "temp-99" or "new-1700000000" fail this check.
func IsStorageID(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	return err == nil && u.String() == s
}

// subdocument is an embedded record addressed by its own identifier.
type subdocument interface {
	subdocumentID() *string
}

// stripPlaceholderIDs clears every non-empty identifier in items that is not
// a storage identifier. Elements are kept; only the ID is removed.
func stripPlaceholderIDs[T any, P interface {
	*T
	subdocument
}](items []T) int {
	n := 0
	for i := range items {
		id := P(&items[i]).subdocumentID()
		if *id != "" && !IsStorageID(*id) {
			*id = ""
			n++
		}
	}
	return n
}

// SanitizeSubdocuments clears placeholder identifiers from the embedded
// sections and leadership of a. Entries left without an ID are inserted as
// new rows with store-allocated identifiers. It returns the number of IDs
// cleared and is a no-op on documents that only carry storage identifiers.
func SanitizeSubdocuments(a *About) int {
	if a == nil {
		return 0
	}
	return stripPlaceholderIDs(a.Sections) + stripPlaceholderIDs(a.Leadership)
}
