package importer

import (
	"slices"
	"strings"
)

type Schema int

const (
	// SchemaNative is the layout written by the library export.
	SchemaNative Schema = iota
	// SchemaExternalExport is the Goodreads library export.
	SchemaExternalExport
)

func (s Schema) String() string {
	switch s {
	case SchemaExternalExport:
		return "goodreads"
	default:
		return "native"
	}
}

// Layout maps each field to its column index, -1 when the column is absent.
type Layout struct {
	ISBN10            int
	ISBN13            int
	Title             int
	Authors           int
	AdditionalAuthors int
	Publisher         int
	Pages             int
	PublishedDate     int
	Description       int
	Language          int
	Categories        int
	Ownership         int
	Reading           int
	Rating            int
	Review            int
}

// DetectSchema classifies a header record and maps its columns.
func DetectSchema(header []string) (Schema, Layout, error) {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	if len(cols) > 0 {
		cols[0] = strings.TrimPrefix(cols[0], "\ufeff")
	}
	index := func(name string) int { return slices.Index(cols, name) }

	if index("Book Id") >= 0 && index("Title") >= 0 && index("Author") >= 0 {
		return SchemaExternalExport, Layout{
			ISBN10:            index("ISBN"),
			ISBN13:            index("ISBN13"),
			Title:             index("Title"),
			Authors:           index("Author"),
			AdditionalAuthors: index("Additional Authors"),
			Publisher:         index("Publisher"),
			Pages:             index("Number of Pages"),
			PublishedDate:     index("Year Published"),
			Description:       -1,
			Language:          -1,
			Categories:        -1,
			Ownership:         -1,
			Reading:           -1,
			Rating:            index("My Rating"),
			Review:            index("My Review"),
		}, nil
	}

	l := Layout{
		ISBN10:            index("ISBN-10"),
		ISBN13:            index("ISBN-13"),
		Title:             index("Title"),
		Authors:           index("Authors"),
		AdditionalAuthors: -1,
		Publisher:         index("Publisher"),
		Pages:             index("Number of pages"),
		PublishedDate:     index("Published date"),
		Description:       index("Description"),
		Language:          index("Language"),
		Categories:        index("Categories"),
		Ownership:         index("Ownership Status"),
		Reading:           index("Reading Status"),
		Rating:            -1,
		Review:            -1,
	}
	if l.ISBN10 < 0 && l.ISBN13 < 0 {
		return SchemaNative, Layout{}, ErrMissingISBNColumns
	}
	if l.Ownership < 0 || l.Reading < 0 {
		return SchemaNative, Layout{}, ErrMissingStatusColumns
	}
	return SchemaNative, l, nil
}
