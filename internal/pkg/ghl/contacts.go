package ghl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

// UpsertContact creates the contact or updates the one matching its email or phone.
func (c *Client) UpsertContact(ctx context.Context, token string, in ContactRequest) (json.RawMessage, error) {
	var envelope struct {
		Contact json.RawMessage `json:"contact"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/contacts/upsert",
		token:  token,
		body:   in,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Contact, nil
}

// CreateCustomField adds the "<app name> UTM" text field to a location.
func (c *Client) CreateCustomField(ctx context.Context, token, locationID string) (json.RawMessage, error) {
	if locationID == "" {
		return nil, fmt.Errorf("location id: %w", syncerr.ErrMissingArgument)
	}

	var envelope struct {
		CustomField json.RawMessage `json:"customField"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/locations/" + url.PathEscape(locationID) + "/customFields",
		token:  token,
		body:   customFieldRequest{Name: c.CustomFieldName(), DataType: "TEXT"},
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.CustomField, nil
}

func (c *Client) CustomFieldName() string {
	name := c.AppName
	if name == "" {
		name = defaultAppName
	}
	return name + " UTM"
}
