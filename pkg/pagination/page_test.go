package pagination

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodePage(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expectError bool
		enveloped   bool
		items       int
		nextPageURL string
	}{
		{
			name:  "bare array",
			raw:   `[{"id":1,"title":"VIP"},{"id":2,"title":"Lead"}]`,
			items: 2,
		},
		{
			name:  "empty bare array",
			raw:   `[]`,
			items: 0,
		},
		{
			name:        "envelope with continuation",
			raw:         `{"data":[{"id":1}],"next_page_url":"https://crm.example.com/wp-json/fluent-crm/v2/tags?page=2"}`,
			enveloped:   true,
			items:       1,
			nextPageURL: "https://crm.example.com/wp-json/fluent-crm/v2/tags?page=2",
		},
		{
			name:      "envelope with null continuation",
			raw:       `{"data":[{"id":2}],"next_page_url":null}`,
			enveloped: true,
			items:     1,
		},
		{
			name:      "envelope without continuation field",
			raw:       `{"data":[]}`,
			enveloped: true,
			items:     0,
		},
		{
			name:        "object without data field",
			raw:         `{"total":10,"per_page":5}`,
			expectError: true,
		},
		{
			name:        "data field is not an array",
			raw:         `{"data":{"id":1}}`,
			expectError: true,
		},
		{
			name:        "scalar value",
			raw:         `42`,
			expectError: true,
		},
		{
			name:        "string value",
			raw:         `"tags"`,
			expectError: true,
		},
		{
			name:        "null value",
			raw:         `null`,
			expectError: true,
		},
		{
			name:        "array of non-objects",
			raw:         `[1,2,3]`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg, err := decodePage(json.RawMessage(tt.raw), "tags", 1)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got nil")
				}
				var formatErr *FormatError
				if !errors.As(err, &formatErr) {
					t.Fatalf("Expected *FormatError, got %T: %v", err, err)
				}
				if formatErr.Collection != "tags" || formatErr.Page != 1 {
					t.Errorf("FormatError context = (%s, %d), want (tags, 1)",
						formatErr.Collection, formatErr.Page)
				}
				return
			}

			if err != nil {
				t.Fatalf("decodePage() failed: %v", err)
			}
			if pg.Enveloped != tt.enveloped {
				t.Errorf("Enveloped = %v, want %v", pg.Enveloped, tt.enveloped)
			}
			if len(pg.Items) != tt.items {
				t.Errorf("Items = %d, want %d", len(pg.Items), tt.items)
			}
			if pg.NextPageURL != tt.nextPageURL {
				t.Errorf("NextPageURL = %q, want %q", pg.NextPageURL, tt.nextPageURL)
			}
		})
	}
}

func TestItemID(t *testing.T) {
	tests := []struct {
		name     string
		item     Item
		expected int64
		ok       bool
	}{
		{
			name:     "numeric id",
			item:     Item{"id": float64(42), "title": "VIP"},
			expected: 42,
			ok:       true,
		},
		{
			name:     "string id",
			item:     Item{"id": "17"},
			expected: 17,
			ok:       true,
		},
		{
			name: "missing id",
			item: Item{"title": "VIP"},
			ok:   false,
		},
		{
			name: "non-numeric string id",
			item: Item{"id": "vip"},
			ok:   false,
		},
		{
			name: "null id",
			item: Item{"id": nil},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.item.ID()
			if ok != tt.ok {
				t.Fatalf("ID() ok = %v, want %v", ok, tt.ok)
			}
			if ok && id != tt.expected {
				t.Errorf("ID() = %d, want %d", id, tt.expected)
			}
		})
	}
}

func TestFormatError_Error(t *testing.T) {
	err := &FormatError{Collection: "lists", Page: 3, Detail: "object without a data field"}
	want := "unexpected response format for lists (page 3): object without a data field"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
