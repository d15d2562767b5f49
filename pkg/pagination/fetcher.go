package pagination

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Gateway is the request surface the fetcher needs from the CRM client.
type Gateway interface {
	// Request performs an authenticated JSON request; the endpoint is
	// relative to the versioned API root.
	Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error)

	// RelativeEndpoint rewrites an absolute continuation URL into an
	// endpoint usable with Request.
	RelativeEndpoint(absoluteURL string) string
}

// Fetcher retrieves full collections, page by page.
type Fetcher struct {
	gateway Gateway
	logger  zerolog.Logger
}

// NewFetcher creates a fetcher bound to a gateway.
func NewFetcher(gw Gateway) *Fetcher {
	return &Fetcher{
		gateway: gw,
		logger:  log.With().Str("component", "pagination").Logger(),
	}
}

// FetchAll retrieves every item of the named collection ("tags" or
// "lists"), following next_page_url links until exhausted.
//
// The first page decides the shape for the whole fetch: a bare array is
// the complete collection, an envelope starts a link-following loop in
// which every further page must also be an envelope. A shape mismatch
// mid-sequence fails the fetch; accumulated items are not returned.
// An empty collection is a valid, non-error result.
func (f *Fetcher) FetchAll(ctx context.Context, collection string) ([]Item, error) {
	body, err := f.fetchPage(ctx, collection, collection, 1)
	if err != nil {
		return nil, err
	}

	pg, err := decodePage(body, collection, 1)
	if err != nil {
		return nil, err
	}

	if !pg.Enveloped {
		f.logger.Info().
			Str("collection", collection).
			Int("items", len(pg.Items)).
			Msg("Unpaginated collection, single page")
		return pg.Items, nil
	}

	items := append([]Item(nil), pg.Items...)
	next := pg.NextPageURL

	pageNum := 1
	for next != "" {
		pageNum++
		endpoint := f.gateway.RelativeEndpoint(next)
		f.logger.Info().
			Str("collection", collection).
			Int("page", pageNum).
			Msg("Fetching collection page")

		body, err := f.fetchPage(ctx, collection, endpoint, pageNum)
		if err != nil {
			return nil, err
		}

		pg, err := decodePage(body, collection, pageNum)
		if err != nil {
			return nil, err
		}
		if !pg.Enveloped {
			// Page 1 established the envelope shape; a bare array here
			// is a broken sequence, not a terminal page.
			return nil, &FormatError{
				Collection: collection,
				Page:       pageNum,
				Detail:     "expected paginated envelope, got bare array",
			}
		}

		items = append(items, pg.Items...)
		next = pg.NextPageURL
	}

	f.logger.Info().
		Str("collection", collection).
		Int("pages", pageNum).
		Int("items", len(items)).
		Msg("Collection fetch complete")

	return items, nil
}

// fetchPage requests one page and unwraps the top-level collection key.
func (f *Fetcher) fetchPage(ctx context.Context, collection, endpoint string, pageNum int) (json.RawMessage, error) {
	raw, err := f.gateway.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &FormatError{
			Collection: collection,
			Page:       pageNum,
			Detail:     "response is not a JSON object",
		}
	}

	body, ok := top[collection]
	if !ok {
		return nil, &FormatError{
			Collection: collection,
			Page:       pageNum,
			Detail:     "response missing the " + collection + " key",
		}
	}
	return body, nil
}
