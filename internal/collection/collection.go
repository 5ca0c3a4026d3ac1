package collection

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"libro/internal/catalog"
)

var (
	ErrNotFound      = errors.New("book not in collection")
	ErrAlreadyExists = errors.New("book already in collection")
)

type Ownership string

const (
	OwnershipOwned    Ownership = "Owned"
	OwnershipWishlist Ownership = "Wishlist"
	OwnershipBorrowed Ownership = "Borrowed"
	OwnershipLentOut  Ownership = "Lent Out"
	OwnershipDigital  Ownership = "Digital"
	OwnershipGifted   Ownership = "Gifted"
)

var OwnershipStatuses = []Ownership{
	OwnershipOwned, OwnershipWishlist, OwnershipBorrowed,
	OwnershipLentOut, OwnershipDigital, OwnershipGifted,
}

type Reading string

const (
	ReadingNotStarted Reading = "Not Started"
	ReadingReading    Reading = "Reading"
	ReadingPaused     Reading = "Paused"
	ReadingCompleted  Reading = "Completed"
	ReadingAbandoned  Reading = "Abandoned"
	ReadingRereading  Reading = "Re-reading"
)

var ReadingStatuses = []Reading{
	ReadingNotStarted, ReadingReading, ReadingPaused,
	ReadingCompleted, ReadingAbandoned, ReadingRereading,
}

// InvalidStatusError reports a status value outside its enumeration.
type InvalidStatusError struct {
	Kind    string // "ownership" or "reading"
	Value   string
	Allowed []string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("Invalid %s status %q. Must be one of: %s", e.Kind, e.Value, strings.Join(e.Allowed, ", "))
}

func ParseOwnership(s string) (Ownership, error) {
	for _, o := range OwnershipStatuses {
		if string(o) == s {
			return o, nil
		}
	}
	allowed := make([]string, len(OwnershipStatuses))
	for i, o := range OwnershipStatuses {
		allowed[i] = string(o)
	}
	return "", &InvalidStatusError{Kind: "ownership", Value: s, Allowed: allowed}
}

func ParseReading(s string) (Reading, error) {
	for _, r := range ReadingStatuses {
		if string(r) == s {
			return r, nil
		}
	}
	allowed := make([]string, len(ReadingStatuses))
	for i, r := range ReadingStatuses {
		allowed[i] = string(r)
	}
	return "", &InvalidStatusError{Kind: "reading", Value: s, Allowed: allowed}
}

// Entry is one book on a user's shelf. (UserID, BookID) is unique.
type Entry struct {
	UserID    string    `json:"-"`
	BookID    string    `json:"book_id"`
	Source    string    `json:"source"`
	Ownership Ownership `json:"ownership_status"`
	Reading   Reading   `json:"reading_status"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Validate checks both statuses against their enumerations.
func (e Entry) Validate() error {
	if _, err := ParseOwnership(string(e.Ownership)); err != nil {
		return err
	}
	_, err := ParseReading(string(e.Reading))
	return err
}

// Item is an entry together with the book it points at.
type Item struct {
	Entry
	Book catalog.Book `json:"book"`
}

// StatusUpdate changes one or both statuses; nil fields are kept.
type StatusUpdate struct {
	Ownership *Ownership
	Reading   *Reading
}
