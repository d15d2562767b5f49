// Package pagination assembles complete tag and list collections by
// following server-supplied continuation links.
//
// FluentCRM answers collection endpoints in one of two shapes: a bare
// item array (the whole collection, no further pages) or an envelope
// holding a data array plus a next_page_url link. The package decodes
// both into one tagged union at the boundary and rejects anything else
// with a FormatError.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(crmClient)
//	tags, err := fetcher.FetchAll(ctx, "tags")
//
// Fetching is strictly serial: each continuation link depends on the
// previous page's response, so N pages cost exactly N requests.
package pagination
