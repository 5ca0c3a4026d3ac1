package importer

import (
	"regexp"
	"strconv"
	"strings"

	"libro/internal/collection"
)

// Row is one parsed data record.
type Row struct {
	Title         string
	Authors       []string
	ISBN10        string
	ISBN13        string
	Publisher     string
	PageCount     *int
	PublishedDate string
	Language      string
	Description   string
	Categories    []string
	Ownership     collection.Ownership
	Reading       collection.Reading
	// Rating and ReviewText are only carried for Goodreads rows rated above zero.
	Rating     int
	ReviewText string
}

func (r Row) HasISBN() bool {
	return r.ISBN10 != "" || r.ISBN13 != ""
}

// Goodreads wraps ISBNs in a formula guard: ="0441172717".
var formulaGuard = regexp.MustCompile(`="?([\dXx]+)"?`)

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func unwrapISBN(s string) string {
	if m := formulaGuard.FindStringSubmatch(s); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func parsePages(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// ParseRow maps a data record through the layout. Status errors are reported
// before a missing title.
func ParseRow(schema Schema, l Layout, rec []string) (Row, error) {
	row := Row{
		Title:         field(rec, l.Title),
		Publisher:     field(rec, l.Publisher),
		PageCount:     parsePages(field(rec, l.Pages)),
		PublishedDate: field(rec, l.PublishedDate),
		Language:      field(rec, l.Language),
		Description:   field(rec, l.Description),
	}

	switch schema {
	case SchemaExternalExport:
		row.ISBN10 = unwrapISBN(field(rec, l.ISBN10))
		row.ISBN13 = unwrapISBN(field(rec, l.ISBN13))
		if primary := field(rec, l.Authors); primary != "" {
			row.Authors = append(row.Authors, primary)
		}
		row.Authors = append(row.Authors, splitList(field(rec, l.AdditionalAuthors), ",")...)
		row.Ownership = collection.OwnershipOwned
		row.Reading = collection.ReadingCompleted
		if rating, err := strconv.Atoi(field(rec, l.Rating)); err == nil && rating > 0 {
			row.Rating = rating
			row.ReviewText = field(rec, l.Review)
		}

	default:
		row.ISBN10 = field(rec, l.ISBN10)
		row.ISBN13 = field(rec, l.ISBN13)
		row.Authors = splitList(field(rec, l.Authors), ";")
		row.Categories = splitList(field(rec, l.Categories), ";")

		ownership, reading := field(rec, l.Ownership), field(rec, l.Reading)
		if ownership == "" || reading == "" {
			return Row{}, ErrMissingStatus
		}
		var err error
		if row.Ownership, err = collection.ParseOwnership(ownership); err != nil {
			return Row{}, err
		}
		if row.Reading, err = collection.ParseReading(reading); err != nil {
			return Row{}, err
		}
	}

	if row.Title == "" {
		return Row{}, ErrTitleRequired
	}
	if row.Authors == nil {
		row.Authors = []string{}
	}
	return row, nil
}
