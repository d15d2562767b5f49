// Package crm provides typed FluentCRM operations over the HTTP gateway:
// contact lookup and lifecycle, tag/list CRUD, and association updates.
package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/fluentcrm-tools/fluentctl/pkg/client"
	"github.com/fluentcrm-tools/fluentctl/pkg/logging"
	"github.com/fluentcrm-tools/fluentctl/pkg/pagination"
)

// ErrNoUpdateFields is returned when an update carries nothing to change.
var ErrNoUpdateFields = errors.New("nothing to update: provide a new title or slug")

// Gateway is the request surface the service needs from the CRM client.
type Gateway interface {
	Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error)
}

// Service exposes FluentCRM resource operations.
type Service struct {
	gateway Gateway
	logger  zerolog.Logger
}

// NewService creates a service bound to a gateway.
func NewService(gw Gateway) *Service {
	return &Service{
		gateway: gw,
		logger:  logging.NewLogger("crm"),
	}
}

// Contact is the subscriber record FluentCRM returns. Raw preserves the
// full document for display; the typed fields cover what the client
// itself interprets.
type Contact struct {
	ID        int64             `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Status    string            `json:"status"`
	Tags      []pagination.Item `json:"tags"`
	Lists     []pagination.Item `json:"lists"`

	Raw json.RawMessage `json:"-"`
}

// ContactRef identifies a contact by email or numeric id. Exactly one
// field is set.
type ContactRef struct {
	Email string
	ID    int64
}

// String returns the identifier as searched, for diagnostics.
func (r ContactRef) String() string {
	if r.Email != "" {
		return r.Email
	}
	return fmt.Sprintf("%d", r.ID)
}

// NotFoundError reports a contact lookup that matched nothing.
type NotFoundError struct {
	Ref string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contact %q not found", e.Ref)
}

// GetContact retrieves a single contact by email or id.
func (s *Service) GetContact(ctx context.Context, ref ContactRef) (*Contact, error) {
	var endpoint string
	if ref.Email != "" {
		endpoint = "subscribers/0?get_by_email=" + url.QueryEscape(ref.Email)
	} else {
		endpoint = fmt.Sprintf("subscribers/%d", ref.ID)
	}

	raw, err := s.gateway.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, &NotFoundError{Ref: ref.String()}
		}
		return nil, err
	}

	var env struct {
		Subscriber json.RawMessage `json:"subscriber"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode subscriber response: %w", err)
	}
	if len(env.Subscriber) == 0 || string(env.Subscriber) == "null" {
		return nil, &NotFoundError{Ref: ref.String()}
	}

	var contact Contact
	if err := json.Unmarshal(env.Subscriber, &contact); err != nil {
		return nil, fmt.Errorf("decode subscriber: %w", err)
	}
	if contact.ID == 0 {
		return nil, &NotFoundError{Ref: ref.String()}
	}

	contact.Raw = env.Subscriber
	return &contact, nil
}

// ContactInput holds the fields for creating a contact.
type ContactInput struct {
	Email     string
	FirstName string
	LastName  string
	TagIDs    []int64
	ListIDs   []int64
}

// CreateContact creates a contact, subscribed, with optional tag and
// list attachments.
func (s *Service) CreateContact(ctx context.Context, input ContactInput) (json.RawMessage, error) {
	payload := map[string]any{
		"email":      input.Email,
		"first_name": input.FirstName,
		"last_name":  input.LastName,
		"status":     "subscribed",
	}
	if len(input.TagIDs) > 0 {
		payload["tags"] = input.TagIDs
	}
	if len(input.ListIDs) > 0 {
		payload["lists"] = input.ListIDs
	}

	return s.gateway.Request(ctx, http.MethodPost, "subscribers", payload)
}

// DeleteContact resolves the contact first, then deletes it by id.
func (s *Service) DeleteContact(ctx context.Context, ref ContactRef) (json.RawMessage, error) {
	contact, err := s.GetContact(ctx, ref)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("contact_id", contact.ID).
		Msg("Contact resolved, proceeding with deletion")

	return s.gateway.Request(ctx, http.MethodDelete, fmt.Sprintf("subscribers/%d", contact.ID), nil)
}

// Association selects which relation an update manipulates.
type Association string

const (
	// AssociationTags manipulates the contact's tag memberships.
	AssociationTags Association = "tags"

	// AssociationLists manipulates the contact's list memberships.
	AssociationLists Association = "lists"
)

// MergeMode controls how new association ids combine with existing ones.
type MergeMode string

const (
	// ModeReplace detaches all current ids and attaches the new set in
	// one update. This is the default.
	ModeReplace MergeMode = "replace"

	// ModeAppend attaches the new ids only; existing associations are
	// untouched and duplicates are left to the server.
	ModeAppend MergeMode = "append"
)

// UpdateAssociations rewrites a contact's tag or list memberships in a
// single update call.
//
// Replace mode detaches every current id and attaches newIDs together;
// no minimal diff is computed. The detach key is omitted when the
// contact has no current associations, the attach key when newIDs is
// empty. Whether the server applies detach and attach atomically is its
// concern; the client carries no compensation logic.
func (s *Service) UpdateAssociations(ctx context.Context, ref ContactRef, assoc Association, newIDs []int64, mode MergeMode) (json.RawMessage, error) {
	contact, err := s.GetContact(ctx, ref)
	if err != nil {
		return nil, err
	}

	attachKey := "attach_" + string(assoc)
	detachKey := "detach_" + string(assoc)

	payload := map[string]any{}
	if mode == ModeAppend {
		payload[attachKey] = newIDs
	} else {
		if current := contact.associationIDs(assoc); len(current) > 0 {
			payload[detachKey] = current
		}
		if len(newIDs) > 0 {
			payload[attachKey] = newIDs
		}
	}

	s.logger.Debug().
		Int64("contact_id", contact.ID).
		Str("association", string(assoc)).
		Str("mode", string(mode)).
		Msg("Updating contact associations")

	return s.gateway.Request(ctx, http.MethodPut, fmt.Sprintf("subscribers/%d", contact.ID), payload)
}

// associationIDs collects the ids of the contact's current tags or lists.
func (c *Contact) associationIDs(assoc Association) []int64 {
	items := c.Tags
	if assoc == AssociationLists {
		items = c.Lists
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if id, ok := it.ID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// CreateTag creates a new tag.
func (s *Service) CreateTag(ctx context.Context, title, slug string) (json.RawMessage, error) {
	return s.gateway.Request(ctx, http.MethodPost, "tags", map[string]any{
		"title": title,
		"slug":  slug,
	})
}

// DeleteTag deletes a tag by id.
func (s *Service) DeleteTag(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.gateway.Request(ctx, http.MethodDelete, fmt.Sprintf("tags/%d", id), nil)
}

// CreateList creates a new list.
func (s *Service) CreateList(ctx context.Context, title, slug string) (json.RawMessage, error) {
	return s.gateway.Request(ctx, http.MethodPost, "lists", map[string]any{
		"title": title,
		"slug":  slug,
	})
}

// UpdateList changes a list's title and/or slug. At least one must be
// provided.
func (s *Service) UpdateList(ctx context.Context, id int64, title, slug string) (json.RawMessage, error) {
	payload := map[string]any{}
	if title != "" {
		payload["title"] = title
	}
	if slug != "" {
		payload["slug"] = slug
	}
	if len(payload) == 0 {
		return nil, ErrNoUpdateFields
	}

	return s.gateway.Request(ctx, http.MethodPut, fmt.Sprintf("lists/%d", id), payload)
}

// DeleteList deletes a list by id.
func (s *Service) DeleteList(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.gateway.Request(ctx, http.MethodDelete, fmt.Sprintf("lists/%d", id), nil)
}
