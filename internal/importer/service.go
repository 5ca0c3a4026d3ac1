package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	crdb "github.com/cockroachdb/errors"

	"libro/internal/auth"
	"libro/internal/collection"
	"libro/internal/platform/logger"
	"libro/internal/review"
)

// Service runs CSV imports. Rows are processed one at a time in file order.
type Service struct {
	resolver   *Resolver
	collection CollectionStore
	reviews    ReviewStore
}

func NewService(resolver *Resolver, shelf CollectionStore, reviews ReviewStore) *Service {
	return &Service{resolver: resolver, collection: shelf, reviews: reviews}
}

// Import reads a whole CSV document and adds every resolvable row to the
// session user's collection. Row problems are collected into the result; the
// returned error is reserved for problems with the file as a whole.
func (s *Service) Import(ctx context.Context, sess auth.Session, r io.Reader, onProgress ProgressFunc) (*Result, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}

	schema, layout, records, err := readDocument(r)
	if err != nil {
		return nil, err
	}

	log := logger.Named("importer")
	log.Infow("import started", "user_id", sess.UserID, "schema", schema.String(), "rows", len(records))

	result := &Result{Failed: []FailedRow{}}
	total := len(records)
	for i, rec := range records {
		added, err := false, rec.err
		if err == nil {
			added, err = s.importRow(ctx, sess.UserID, schema, layout, rec.fields)
		}
		switch {
		case err != nil:
			result.Failed = append(result.Failed, FailedRow{Row: i + 1, Error: err.Error()})
		case added:
			result.Success++
		}
		if onProgress != nil {
			onProgress(Progress{Current: i + 1, Total: total})
		}
	}

	log.Infow("import finished", "user_id", sess.UserID, "success", result.Success, "failed", len(result.Failed))
	return result, nil
}

// importRow reports false without an error when the book is already on the shelf.
func (s *Service) importRow(ctx context.Context, userID string, schema Schema, layout Layout, rec []string) (bool, error) {
	row, err := ParseRow(schema, layout, rec)
	if err != nil {
		return false, err
	}

	res, err := s.resolver.Resolve(ctx, row, userID)
	if err != nil {
		return false, err
	}
	if res.Status == StatusExists {
		return false, nil
	}

	entry := &collection.Entry{
		UserID:    userID,
		BookID:    res.Book.ID,
		Source:    res.Book.Source,
		Ownership: row.Ownership,
		Reading:   row.Reading,
	}
	if err := s.collection.Add(ctx, entry); err != nil {
		return false, err
	}

	if schema == SchemaExternalExport && row.Rating > 0 {
		rv := &review.Review{
			BookID: res.Book.ID,
			UserID: userID,
			Rating: row.Rating,
			Text:   row.ReviewText,
		}
		if err := s.reviews.Create(ctx, rv); err != nil && !errors.Is(err, review.ErrDuplicate) {
			logger.Named("importer").Errorw("review import failed",
				"user_id", userID, "book_id", res.Book.ID, "error", err)
		}
	}
	return true, nil
}

// record is one data record, or the parse error that replaced it.
type record struct {
	fields []string
	err    error
}

// readDocument tokenizes the CSV, detects its schema and returns the non-blank
// data records.
func readDocument(r io.Reader) (Schema, Layout, []record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return SchemaNative, Layout{}, nil, crdb.Wrap(err, "read csv")
	}
	if !utf8.Valid(raw) {
		return SchemaNative, Layout{}, nil, crdb.WithHint(ErrMalformedCSV, "save the file as UTF-8")
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")
	if !strings.Contains(text, "\n") {
		return SchemaNative, Layout{}, nil, crdb.WithHint(ErrEmptyFile, "the file needs a header line and at least one data line")
	}

	all := tokenize(text)
	if len(all) == 0 {
		return SchemaNative, Layout{}, nil, ErrEmptyFile
	}
	if all[0].err != nil {
		return SchemaNative, Layout{}, nil, crdb.Wrap(ErrMalformedCSV, all[0].err.Error())
	}

	schema, layout, err := DetectSchema(all[0].fields)
	if err != nil {
		return schema, layout, nil, crdb.WithHint(err, "export the library from Goodreads or libro and upload the file unchanged")
	}

	records := make([]record, 0, len(all)-1)
	for _, rec := range all[1:] {
		if rec.err != nil || !blank(rec.fields) {
			records = append(records, rec)
		}
	}
	return schema, layout, records, nil
}

func newCSVReader(s string, lazy bool) *csv.Reader {
	cr := csv.NewReader(strings.NewReader(s))
	cr.LazyQuotes = lazy
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

// tokenize reads records strictly so quoted fields may span lines. A record
// that fails to parse costs only the line it starts on: a bare quote in an
// unquoted field (Goodreads' ="..." cells) is re-read leniently, anything
// else becomes an ErrMalformedRow record, and reading resumes on the next line.
func tokenize(text string) []record {
	var out []record
	base := 0
	cr := newCSVReader(text, false)
	for {
		start := base + int(cr.InputOffset())
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err == nil {
			out = append(out, record{fields: fields})
			continue
		}

		for start < len(text) && (text[start] == '\n' || text[start] == '\r') {
			start++
		}
		end := len(text)
		if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
			end = start + i
		}
		out = append(out, reparseLine(strings.TrimSuffix(text[start:end], "\r"), err))

		if end >= len(text) {
			return out
		}
		base = end + 1
		cr = newCSVReader(text[base:], false)
	}
}

func reparseLine(line string, cause error) record {
	var pe *csv.ParseError
	if errors.As(cause, &pe) && errors.Is(pe.Err, csv.ErrBareQuote) {
		if fields, err := newCSVReader(line, true).Read(); err == nil {
			return record{fields: fields}
		}
	}
	return record{err: ErrMalformedRow}
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
