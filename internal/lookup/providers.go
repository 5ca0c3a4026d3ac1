package lookup

import (
	"libro/internal/config"
	"libro/internal/platform/fetch"
	"libro/internal/platform/googlebooks"
	"libro/internal/platform/openlibrary"
)

// FromConfig builds the provider chain in the configured order. Each provider
// gets its own limiter so one slow upstream does not starve the other.
func FromConfig(cfg config.LookupConfig) *Chain {
	newFetcher := func() *fetch.Client {
		return fetch.New(fetch.Options{
			UserAgent:  cfg.UserAgent,
			RPS:        float64(cfg.RPS),
			MaxRetries: cfg.MaxRetries,
		})
	}

	providers := make([]Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch name {
		case "google":
			providers = append(providers, googlebooks.NewClient(newFetcher(), cfg.GoogleBaseURL, cfg.GoogleAPIKey))
		case "openlibrary":
			providers = append(providers, openlibrary.NewClient(newFetcher(), cfg.OLBaseURL))
		}
	}
	return NewChain(providers...)
}
