package brevo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/observability"
)

type createContactRequest struct {
	Email      string         `json:"email"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type updateContactRequest struct {
	Attributes map[string]any `json:"attributes,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
}

type addToListRequest struct {
	Emails []string `json:"emails"`
}

// CreatedContact is the body Brevo returns for a new contact.
type CreatedContact struct {
	ID int64 `json:"id"`
}

// CreateContact creates a contact with attributes.
func (c *Client) CreateContact(ctx context.Context, email string, attributes map[string]any) (*CreatedContact, error) {
	var created CreatedContact
	err := c.do(ctx, http.MethodPost, "/contacts", createContactRequest{Email: email, Attributes: attributes}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateContact updates attributes and/or tags on an existing contact.
func (c *Client) UpdateContact(ctx context.Context, email string, attributes map[string]any, tags []string) error {
	path := "/contacts/" + url.PathEscape(email)
	return c.do(ctx, http.MethodPut, path, updateContactRequest{Attributes: attributes, Tags: tags}, nil)
}

// AddContactToList adds an existing contact to a list.
func (c *Client) AddContactToList(ctx context.Context, listID int64, email string) error {
	path := fmt.Sprintf("/contacts/lists/%d/contacts/add", listID)
	return c.do(ctx, http.MethodPost, path, addToListRequest{Emails: []string{email}}, nil)
}

// SyncContact upserts a submission into Brevo: create with attributes, add
// to the configured list, then tag. A duplicate-contact conflict on create
// is retried once as an update carrying attributes and tags. List and tag
// failures are logged and do not fail the sync.
func (c *Client) SyncContact(ctx context.Context, contact core.CRMContact) error {
	email := strings.TrimSpace(contact.Email)
	if email == "" {
		return fmt.Errorf("contact email is required")
	}

	attributes := contactAttributes(contact)

	if _, err := c.CreateContact(ctx, email, attributes); err != nil {
		if !IsDuplicate(err) {
			return err
		}
		logDebug("Contact already exists in Brevo, updating", zap.String("email", email))
		if err := c.UpdateContact(ctx, email, attributes, contact.Tags); err != nil {
			return fmt.Errorf("update existing contact: %w", err)
		}
		return nil
	}

	if contact.ListID > 0 {
		if err := c.AddContactToList(ctx, contact.ListID, email); err != nil && StatusCode(err) != http.StatusBadRequest {
			logWarn("Failed to add contact to list", zap.Int64("list_id", contact.ListID), zap.Error(err))
		}
	}

	if len(contact.Tags) > 0 {
		if err := c.UpdateContact(ctx, email, nil, contact.Tags); err != nil {
			logWarn("Failed to tag contact", zap.Strings("tags", contact.Tags), zap.Error(err))
		}
	}

	return nil
}

func contactAttributes(contact core.CRMContact) map[string]any {
	attributes := map[string]any{
		"FIRSTNAME": contact.FirstName,
		"LASTNAME":  contact.LastName,
	}
	if contact.Note != "" {
		attributes["NOTE"] = contact.Note
	}
	return attributes
}

func logWarn(msg string, fields ...zap.Field) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn(msg, fields...)
	}
}

func logDebug(msg string, fields ...zap.Field) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Debug(msg, fields...)
	}
}
