package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/fluentcrm-tools/fluentctl/pkg/pagination"
)

// canonicalColumns lead the CSV header in this order when present, and
// form the complete header when the collection is empty.
var canonicalColumns = []string{"id", "title", "slug", "created_at", "updated_at"}

// runCollection fetches every page of a collection and writes it to
// stdout as CSV.
func runCollection(collection string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	items, err := pagination.NewFetcher(c).FetchAll(context.Background(), collection)
	if err != nil {
		return err
	}

	return writeCollectionCSV(os.Stdout, items)
}

// writeCollectionCSV renders items as CSV. Columns come from the first
// item: canonical columns first, any remaining keys sorted. An empty
// collection yields the canonical header and nothing else.
func writeCollectionCSV(w io.Writer, items []pagination.Item) error {
	cw := csv.NewWriter(w)

	if len(items) == 0 {
		if err := cw.Write(canonicalColumns); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}

	columns := columnOrder(items[0])
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(columns))
	for _, item := range items {
		for i, col := range columns {
			row[i] = formatValue(item[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// columnOrder derives the header from one item's keys.
func columnOrder(item pagination.Item) []string {
	columns := make([]string, 0, len(item))
	seen := make(map[string]bool, len(item))

	for _, col := range canonicalColumns {
		if _, ok := item[col]; ok {
			columns = append(columns, col)
			seen[col] = true
		}
	}

	rest := make([]string, 0, len(item))
	for key := range item {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(columns, rest...)
}

// formatValue renders a decoded JSON value as a CSV cell. Numbers keep
// their shortest representation; nested values fall back to JSON.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(encoded)
	}
}
