package ghl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ManuelReschke/SlotSync/internal/pkg/env"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"github.com/cenkalti/backoff/v5"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/oauth2"
)

const (
	defaultAuthorizeURL = "https://marketplace.gohighlevel.com/oauth/chooselocation"
	defaultTokenURL     = "https://services.leadconnectorhq.com/oauth/token"
)

// TokenGrant is the token endpoint's answer to an exchange or refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	UserType     string
	LocationID   string
	CompanyID    string
	ExpiresIn    int64
}

// OAuth talks to the platform's token endpoint.
type OAuth struct {
	config         oauth2.Config
	MaxRetries     uint
	RetryBaseDelay time.Duration
	HTTPClient     *http.Client

	now func() time.Time
}

func NewOAuth(clientID, clientSecret, redirectURL, authURL, tokenURL string, scopes []string) *OAuth {
	return &OAuth{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		MaxRetries:     2,
		RetryBaseDelay: 500 * time.Millisecond,
		HTTPClient:     &http.Client{Timeout: 15 * time.Second},
		now:            time.Now,
	}
}

func NewOAuthFromEnv() *OAuth {
	o := NewOAuth(
		strings.TrimSpace(env.GetEnv("GHL_CLIENT_ID", "")),
		strings.TrimSpace(env.GetEnv("GHL_CLIENT_SECRET", "")),
		strings.TrimSpace(env.GetEnv("GHL_REDIRECT_URI", "")),
		strings.TrimSpace(env.GetEnv("GHL_AUTHORIZE_URL", defaultAuthorizeURL)),
		strings.TrimSpace(env.GetEnv("GHL_TOKEN_URL", defaultTokenURL)),
		strings.Fields(env.GetEnv("GHL_SCOPES", "")),
	)
	o.MaxRetries = uint(max(env.GetIntEnv("HTTP_MAX_RETRIES", 2), 0))
	o.HTTPClient.Timeout = time.Duration(env.GetIntEnv("HTTP_TIMEOUT_SECONDS", 15)) * time.Second
	return o
}

// AuthCodeURL is the marketplace page where an agency installs the app.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state)
}

func (o *OAuth) Exchange(ctx context.Context, code, userType string) (*TokenGrant, error) {
	if strings.TrimSpace(o.config.ClientID) == "" || strings.TrimSpace(o.config.ClientSecret) == "" {
		return nil, errors.New("GHL_CLIENT_ID/GHL_CLIENT_SECRET are not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("oauth code: %w", syncerr.ErrMissingArgument)
	}

	opts := []oauth2.AuthCodeOption{}
	if userType != "" {
		opts = append(opts, oauth2.SetAuthURLParam("user_type", userType))
	}
	tok, err := o.config.Exchange(o.clientContext(ctx), strings.TrimSpace(code), opts...)
	if err != nil {
		return nil, fmt.Errorf("ghl token exchange failed: %w", wrapRetrieveError(err))
	}
	return o.grantFromToken(tok)
}

// Refresh runs the refresh_token grant with bounded retries on network
// errors, 429 and 5xx.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("refresh token: %w", syncerr.ErrMissingArgument)
	}

	op := func() (*oauth2.Token, error) {
		src := o.config.TokenSource(o.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
		tok, err := src.Token()
		if err == nil {
			return tok, nil
		}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			status := re.Response.StatusCode
			if status != http.StatusTooManyRequests && status < 500 {
				return nil, backoff.Permanent(err)
			}
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	if o.RetryBaseDelay > 0 {
		b.InitialInterval = o.RetryBaseDelay
	}
	tok, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(o.MaxRetries+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warnf("[GHL] token refresh failed, retrying in %s: %v", next, err)
		}),
	)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		return nil, fmt.Errorf("ghl token refresh failed: %w", wrapRetrieveError(err))
	}
	return o.grantFromToken(tok)
}

func (o *OAuth) clientContext(ctx context.Context) context.Context {
	if o.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, o.HTTPClient)
}

func (o *OAuth) grantFromToken(tok *oauth2.Token) (*TokenGrant, error) {
	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		return nil, errors.New("ghl token endpoint returned empty access_token")
	}

	g := &TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scope:        extraString(tok, "scope"),
		UserType:     extraString(tok, "userType"),
		LocationID:   extraString(tok, "locationId"),
		CompanyID:    extraString(tok, "companyId"),
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		g.ExpiresIn = int64(v)
	default:
		if !tok.Expiry.IsZero() {
			g.ExpiresIn = int64(tok.Expiry.Sub(o.now()).Seconds())
		}
	}
	return g, nil
}

func extraString(tok *oauth2.Token, key string) string {
	if s, ok := tok.Extra(key).(string); ok {
		return s
	}
	return ""
}

// wrapRetrieveError turns token endpoint HTTP failures into *APIError.
func wrapRetrieveError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &APIError{
			Method: http.MethodPost,
			Path:   "/oauth/token",
			Status: re.Response.StatusCode,
			Body:   string(re.Body),
		}
	}
	return fmt.Errorf("%w: %w", syncerr.ErrRemoteFetchFailed, err)
}
