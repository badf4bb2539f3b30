package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

func (c *Client) GetLocation(ctx context.Context, token, locationID string) (*Location, error) {
	if locationID == "" {
		return nil, fmt.Errorf("location id: %w", syncerr.ErrMissingArgument)
	}

	var envelope struct {
		Location json.RawMessage `json:"location"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/locations/" + url.PathEscape(locationID),
		token:  token,
	}, &envelope)
	if err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(envelope.Location)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("location %s: empty payload: %w", locationID, syncerr.ErrRemoteFetchFailed)
	}
	var loc Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("location %s: decode: %w: %w", locationID, syncerr.ErrRemoteFetchFailed, err)
	}
	loc.Raw = append(json.RawMessage(nil), raw...)
	return &loc, nil
}

// GetCompany returns the company payload unchanged.
func (c *Client) GetCompany(ctx context.Context, token, companyID string) (json.RawMessage, error) {
	if companyID == "" {
		return nil, fmt.Errorf("company id: %w", syncerr.ErrMissingArgument)
	}

	var out json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/companies/" + url.PathEscape(companyID),
		token:  token,
	}, &out)
	return out, err
}
