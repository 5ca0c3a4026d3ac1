package openlibrary

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"libro/internal/catalog"
	"libro/internal/platform/fetch"
)

const (
	DefaultBaseURL = "https://openlibrary.org"
	coversBaseURL  = "https://covers.openlibrary.org"
)

type Client struct {
	fetcher *fetch.Client
	baseURL string
}

func NewClient(fetcher *fetch.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) Name() string { return catalog.SourceOpenLibrary }

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
	Language         []string `json:"language"`
	Publisher        []string `json:"publisher"`
	Subject          []string `json:"subject"`
	PagesMedian      int      `json:"number_of_pages_median"`
	CoverID          int      `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
	EditionKey       []string `json:"edition_key"`
}

type named struct {
	Name string `json:"name"`
}

// BookDetails matches api/books?jscmd=data
type BookDetails struct {
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	Publishers  []named `json:"publishers"`
	PublishDate string  `json:"publish_date"`
	Authors     []named `json:"authors"`
	Subjects    []named `json:"subjects"`
	Identifiers struct {
		ISBN10 []string `json:"isbn_10"`
		ISBN13 []string `json:"isbn_13"`
	} `json:"identifiers"`
	Cover struct {
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
	NumberOfPages int    `json:"number_of_pages"`
	Notes         string `json:"notes"`
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

func names(ns []named) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Name)
	}
	return out
}

// ToBook maps an edition record onto the catalog model.
func (d BookDetails) ToBook() catalog.Book {
	title := d.Title
	if d.Subtitle != "" {
		title += ": " + d.Subtitle
	}
	b := catalog.Book{
		Source:        catalog.SourceOpenLibrary,
		ID:            strings.TrimPrefix(d.Key, "/books/"),
		Title:         title,
		Authors:       names(d.Authors),
		Description:   d.Notes,
		PublishedDate: d.PublishDate,
		ISBN10:        first(d.Identifiers.ISBN10),
		ISBN13:        first(d.Identifiers.ISBN13),
		CoverImage:    d.Cover.Medium,
	}
	if len(d.Publishers) > 0 {
		b.Publisher = d.Publishers[0].Name
	}
	if len(d.Subjects) > 0 {
		b.Categories = names(d.Subjects)
	}
	if d.NumberOfPages > 0 {
		pc := d.NumberOfPages
		b.PageCount = &pc
	}
	return b
}

// ToBook maps a search hit onto the catalog model, keyed by its cover edition.
func (d SearchDoc) ToBook() catalog.Book {
	id := d.CoverEditionKey
	if id == "" {
		id = first(d.EditionKey)
	}
	b := catalog.Book{
		Source:     catalog.SourceOpenLibrary,
		ID:         id,
		Title:      d.Title,
		Authors:    d.AuthorNames,
		Publisher:  first(d.Publisher),
		Language:   first(d.Language),
		Categories: d.Subject,
	}
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if d.FirstPublishYear > 0 {
		b.PublishedDate = fmt.Sprint(d.FirstPublishYear)
	}
	if d.PagesMedian > 0 {
		pc := d.PagesMedian
		b.PageCount = &pc
	}
	if d.CoverID > 0 {
		b.CoverImage = fmt.Sprintf("%s/b/id/%d-M.jpg", coversBaseURL, d.CoverID)
	}
	for _, isbn := range d.ISBN {
		switch {
		case len(isbn) == 10 && b.ISBN10 == "":
			b.ISBN10 = isbn
		case len(isbn) == 13 && b.ISBN13 == "":
			b.ISBN13 = isbn
		}
	}
	return b
}

func (c *Client) books(ctx context.Context, bibkey string) (*catalog.Book, error) {
	u := fmt.Sprintf("%s/api/books?bibkeys=%s&jscmd=data&format=json", c.baseURL, url.QueryEscape(bibkey))

	var res map[string]BookDetails
	if err := c.fetcher.GetJSON(ctx, u, &res); err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "open library %s", bibkey)
	}
	d, ok := res[bibkey]
	if !ok {
		return nil, nil
	}
	b := d.ToBook()
	return &b, nil
}

// LookupByISBN resolves an edition by ISBN. A miss is (nil, nil).
func (c *Client) LookupByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	return c.books(ctx, "ISBN:"+catalog.CleanISBN(isbn))
}

// LookupByID resolves an edition by its OLID, e.g. OL7353617M.
func (c *Client) LookupByID(ctx context.Context, olid string) (*catalog.Book, error) {
	return c.books(ctx, "OLID:"+olid)
}

func (c *Client) Search(ctx context.Context, q string, offset, limit int) ([]catalog.Book, int, error) {
	params := url.Values{}
	if isbn, ok := strings.CutPrefix(q, "isbn:"); ok {
		params.Set("isbn", isbn)
	} else {
		params.Set("q", q)
	}
	params.Set("fields", "key,title,author_name,isbn,first_publish_year,language,publisher,subject,number_of_pages_median,cover_i,cover_edition_key,edition_key")
	params.Set("offset", fmt.Sprint(offset))
	params.Set("limit", fmt.Sprint(max(limit, 1)))

	var res SearchResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/search.json?"+params.Encode(), &res); err != nil {
		return nil, 0, errors.Wrapf(err, "open library search %q", q)
	}

	books := make([]catalog.Book, 0, len(res.Docs))
	for _, d := range res.Docs {
		b := d.ToBook()
		if b.ID == "" {
			continue
		}
		books = append(books, b)
	}
	return books, res.NumFound, nil
}
