package googlebooks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"libro/internal/catalog"
	"libro/internal/platform/fetch"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1"

type Client struct {
	fetcher *fetch.Client
	baseURL string
	apiKey  string
}

func NewClient(fetcher *fetch.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

func (c *Client) Name() string { return catalog.SourceGoogle }

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Volume matches the volume resource of the Books API.
type Volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string               `json:"title"`
		Authors             []string             `json:"authors"`
		Description         string               `json:"description"`
		PublishedDate       string               `json:"publishedDate"`
		Publisher           string               `json:"publisher"`
		PageCount           int                  `json:"pageCount"`
		Categories          []string             `json:"categories"`
		Language            string               `json:"language"`
		AverageRating       *float64             `json:"averageRating"`
		IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
		ImageLinks          struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// ToBook maps a volume onto the catalog model. Covers are forced to https.
func (v Volume) ToBook() catalog.Book {
	info := v.VolumeInfo
	b := catalog.Book{
		Source:        catalog.SourceGoogle,
		ID:            v.ID,
		Title:         info.Title,
		Authors:       info.Authors,
		Description:   info.Description,
		PublishedDate: info.PublishedDate,
		Publisher:     info.Publisher,
		Language:      info.Language,
		Categories:    info.Categories,
		AverageRating: info.AverageRating,
		CoverImage:    strings.Replace(info.ImageLinks.Thumbnail, "http:", "https:", 1),
	}
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if info.PageCount > 0 {
		pc := info.PageCount
		b.PageCount = &pc
	}
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_10":
			b.ISBN10 = id.Identifier
		case "ISBN_13":
			b.ISBN13 = id.Identifier
		}
	}
	return b
}

func (c *Client) url(path string, params url.Values) string {
	if c.apiKey != "" {
		if params == nil {
			params = url.Values{}
		}
		params.Set("key", c.apiKey)
	}
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Search runs a volumes query. q may carry Books API operators such as isbn:.
func (c *Client) Search(ctx context.Context, q string, offset, limit int) ([]catalog.Book, int, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("startIndex", fmt.Sprint(offset))
	params.Set("maxResults", fmt.Sprint(min(max(limit, 1), 40)))

	var res volumesResponse
	if err := c.fetcher.GetJSON(ctx, c.url("/volumes", params), &res); err != nil {
		return nil, 0, errors.Wrapf(err, "google books search %q", q)
	}

	books := make([]catalog.Book, 0, len(res.Items))
	for _, v := range res.Items {
		books = append(books, v.ToBook())
	}
	return books, res.TotalItems, nil
}

// LookupByISBN returns the first volume matching the ISBN, or nil on a miss.
func (c *Client) LookupByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	books, _, err := c.Search(ctx, "isbn:"+catalog.CleanISBN(isbn), 0, 1)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, nil
	}
	return &books[0], nil
}

// LookupByID fetches a single volume. Unknown IDs are a miss, not an error.
func (c *Client) LookupByID(ctx context.Context, id string) (*catalog.Book, error) {
	var v Volume
	err := c.fetcher.GetJSON(ctx, c.url("/volumes/"+url.PathEscape(id), nil), &v)
	if errors.Is(err, fetch.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "google books volume %s", id)
	}
	if v.ID == "" {
		return nil, nil
	}
	b := v.ToBook()
	return &b, nil
}
