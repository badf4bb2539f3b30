// Package token keeps per-account platform access tokens usable, refreshing
// them when their declared lifetime has elapsed.
package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

// CredentialStore persists one AccountCredential per (account, kind).
// FindCredential returns syncerr.ErrCredentialNotFound when there is none.
type CredentialStore interface {
	FindCredential(ctx context.Context, accountID string, kind models.AccountKind) (*models.AccountCredential, error)
	SaveCredential(ctx context.Context, cred *models.AccountCredential) error
}

// Refresher obtains a new access token for an account and persists it.
type Refresher interface {
	Refresh(ctx context.Context, accountID string, kind models.AccountKind) (string, error)
}

type Manager struct {
	store     CredentialStore
	refresher Refresher
	now       func() time.Time
	group     singleflight.Group
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(store CredentialStore, refresher Refresher, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		refresher: refresher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type requestOptions struct {
	allowStale bool
}

type RequestOption func(*requestOptions)

// AllowStale makes Token fall back to the last known token when a refresh fails.
func AllowStale() RequestOption {
	return func(o *requestOptions) {
		o.allowStale = true
	}
}

// IsStale reports whether a token issued at updatedAt with a lifetime of
// expiresIn seconds must be refreshed at now. Reaching the lifetime exactly
// counts as stale.
func IsStale(updatedAt time.Time, expiresIn int64, now time.Time) bool {
	age := int64(now.Sub(updatedAt) / time.Second)
	return age >= expiresIn
}

// UsableToken returns a non-stale access token for the account or fails with
// syncerr.ErrCredentialNotFound or syncerr.ErrTokenUnavailable.
func (m *Manager) UsableToken(ctx context.Context, accountID string, kind models.AccountKind) (string, error) {
	return m.Token(ctx, accountID, kind)
}

func (m *Manager) Token(ctx context.Context, accountID string, kind models.AccountKind, opts ...RequestOption) (string, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(accountID) == "" {
		return "", fmt.Errorf("account id: %w", syncerr.ErrMissingArgument)
	}

	cred, err := m.store.FindCredential(ctx, accountID, kind)
	if err != nil {
		if errors.Is(err, syncerr.ErrCredentialNotFound) {
			return "", err
		}
		return "", fmt.Errorf("load %s credential %s: %w", kind, accountID, err)
	}

	if !IsStale(cred.UpdatedAt, cred.ExpiresIn, m.now()) {
		if cred.AccessToken == "" {
			return "", fmt.Errorf("%s %s: stored token is empty: %w", kind, accountID, syncerr.ErrTokenUnavailable)
		}
		return cred.AccessToken, nil
	}

	fresh, err := m.refresh(ctx, accountID, kind)
	if err == nil && fresh != "" {
		return fresh, nil
	}
	if err == nil {
		err = errors.New("refresh returned no token")
	}
	log.Warnf("[TokenManager] refresh of %s %s failed: %v", kind, accountID, err)

	if o.allowStale && cred.AccessToken != "" {
		return cred.AccessToken, nil
	}
	return "", fmt.Errorf("%s %s: %w: %w", kind, accountID, syncerr.ErrTokenUnavailable, err)
}

// refresh collapses concurrent refreshes of the same account into one call.
// The shared call outlives a cancelled caller.
func (m *Manager) refresh(ctx context.Context, accountID string, kind models.AccountKind) (string, error) {
	key := string(kind) + "|" + accountID
	v, err, shared := m.group.Do(key, func() (any, error) {
		log.Infof("[TokenManager] refreshing %s token for %s", kind, accountID)
		return m.refresher.Refresh(context.WithoutCancel(ctx), accountID, kind)
	})
	if shared {
		log.Debugf("[TokenManager] joined in-flight refresh for %s %s", kind, accountID)
	}
	if err != nil {
		return "", err
	}
	tok, _ := v.(string)
	return tok, nil
}
