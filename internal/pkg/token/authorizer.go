package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile"
	"github.com/gofiber/fiber/v2/log"
)

type CodeExchanger interface {
	Exchange(ctx context.Context, code, userType string) (*ghl.TokenGrant, error)
}

type LocationFetcher interface {
	GetLocation(ctx context.Context, token, locationID string) (*ghl.Location, error)
}

// Authorizer completes an app install: it exchanges the authorization code
// for the tenant's first credential and records the location's details.
type Authorizer struct {
	exchanger CodeExchanger
	store     CredentialStore
	locations LocationFetcher
	details   reconcile.Store[*models.AccountDetail]
	now       func() time.Time
}

func NewAuthorizer(exchanger CodeExchanger, store CredentialStore, locations LocationFetcher, details reconcile.Store[*models.AccountDetail]) *Authorizer {
	return &Authorizer{
		exchanger: exchanger,
		store:     store,
		locations: locations,
		details:   details,
		now:       time.Now,
	}
}

func (a *Authorizer) Authorize(ctx context.Context, code, userType string) (*models.AccountCredential, error) {
	grant, err := a.exchanger.Exchange(ctx, code, userType)
	if err != nil {
		return nil, err
	}

	kindSource := grant.UserType
	if kindSource == "" {
		kindSource = userType
	}
	kind := models.ParseAccountKind(kindSource)

	accountID := grant.LocationID
	if kind == models.AccountKindCompany {
		accountID = grant.CompanyID
	}
	if accountID == "" {
		return nil, errors.New("token response carries no account id")
	}

	cred := &models.AccountCredential{
		AccountID:    accountID,
		AccountKind:  kind,
		CompanyID:    grant.CompanyID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		Scope:        grant.Scope,
		ExpiresIn:    grant.ExpiresIn,
		UpdatedAt:    a.now(),
	}
	if err := a.store.SaveCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("save %s credential %s: %w", kind, accountID, err)
	}
	log.Infof("[OAuth] authorized %s %s", kind, accountID)

	if kind == models.AccountKindLocation {
		a.recordLocation(ctx, grant.AccessToken, accountID)
	}
	return cred, nil
}

// recordLocation stores the location's name and timezone. Failures are
// logged only; the credential is already usable.
func (a *Authorizer) recordLocation(ctx context.Context, accessToken, locationID string) {
	if a.locations == nil || a.details == nil {
		return
	}
	loc, err := a.locations.GetLocation(ctx, accessToken, locationID)
	if err != nil {
		log.Errorf("[OAuth] fetching location %s failed: %v", locationID, err)
		return
	}

	detail := &models.AccountDetail{
		AccountID: locationID,
		CompanyID: loc.CompanyID,
		Name:      loc.Name,
		Email:     loc.Email,
		Timezone:  loc.Timezone,
	}
	if detail.Timezone == "" {
		detail.Timezone = "UTC"
	}
	if _, err := reconcile.Reconcile(ctx, a.details, detail); err != nil {
		log.Errorf("[OAuth] saving details of location %s failed: %v", locationID, err)
	}
}
