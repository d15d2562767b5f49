package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is one member of a tag or list collection. Items are opaque
// field-to-value mappings; only the id field is ever interpreted.
type Item map[string]any

// ID returns the item id when present. FluentCRM serializes ids as
// JSON numbers, but string ids from older installations are tolerated.
func (it Item) ID() (int64, bool) {
	switch v := it["id"].(type) {
	case float64:
		return int64(v), true
	case string:
		var id int64
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			return id, true
		}
	}
	return 0, false
}

// FormatError reports a collection page whose shape matches neither
// recognized form. Partial accumulation is discarded when it occurs.
type FormatError struct {
	Collection string
	Page       int
	Detail     string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("unexpected response format for %s (page %d): %s",
		e.Collection, e.Page, e.Detail)
}

// page is the decoded form of one collection page: either a bare item
// array (terminal) or an envelope carrying data plus an optional
// continuation link. Enveloped records which variant applied.
type page struct {
	Items       []Item
	NextPageURL string
	Enveloped   bool
}

// pageEnvelope mirrors the paginated response shape. Data stays raw so
// its presence can be distinguished from an empty array.
type pageEnvelope struct {
	Data        json.RawMessage `json:"data"`
	NextPageURL *string         `json:"next_page_url"`
}

// decodePage decodes one page body into the tagged union. The
// collection and page number only contextualize format errors.
func decodePage(raw json.RawMessage, collection string, pageNum int) (page, error) {
	formatErr := func(detail string) (page, error) {
		return page{}, &FormatError{Collection: collection, Page: pageNum, Detail: detail}
	}

	// json.Unmarshal maps JSON null onto the zero value of either
	// variant, so reject it before shape probing.
	if string(bytes.TrimSpace(raw)) == "null" {
		return formatErr("null collection value")
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err == nil {
		return page{Items: items}, nil
	}

	var env pageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return formatErr("neither an item array nor a paginated envelope")
	}
	if env.Data == nil {
		return formatErr("object without a data field")
	}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return formatErr("data field is not an item array")
	}

	result := page{Items: items, Enveloped: true}
	if env.NextPageURL != nil {
		result.NextPageURL = *env.NextPageURL
	}
	return result, nil
}
