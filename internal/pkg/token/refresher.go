package token

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/gofiber/fiber/v2/log"
)

// GrantRefresher runs the OAuth refresh_token grant.
type GrantRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*ghl.TokenGrant, error)
}

// OAuthRefresher refreshes a stored credential against the platform token
// endpoint and writes the superseding credential back in place.
type OAuthRefresher struct {
	store CredentialStore
	oauth GrantRefresher
	now   func() time.Time
}

func NewOAuthRefresher(store CredentialStore, oauth GrantRefresher) *OAuthRefresher {
	return &OAuthRefresher{store: store, oauth: oauth, now: time.Now}
}

func (r *OAuthRefresher) Refresh(ctx context.Context, accountID string, kind models.AccountKind) (string, error) {
	cred, err := r.store.FindCredential(ctx, accountID, kind)
	if err != nil {
		return "", err
	}
	if cred.RefreshToken == "" {
		return "", errors.New("no refresh token stored")
	}

	grant, err := r.oauth.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return "", err
	}

	cred.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		cred.RefreshToken = grant.RefreshToken
	}
	if grant.Scope != "" {
		cred.Scope = grant.Scope
	}
	if grant.CompanyID != "" {
		cred.CompanyID = grant.CompanyID
	}
	cred.ExpiresIn = grant.ExpiresIn
	cred.UpdatedAt = r.now()

	if err := r.store.SaveCredential(ctx, cred); err != nil {
		// The new access token is valid even though it could not be stored.
		log.Errorf("[TokenManager] saving refreshed %s credential %s failed: %v", kind, accountID, err)
		return grant.AccessToken, nil
	}
	log.Infof("[TokenManager] refreshed %s token for %s, expires in %ds", kind, accountID, grant.ExpiresIn)
	return grant.AccessToken, nil
}
