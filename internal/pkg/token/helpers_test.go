package token

import (
	"context"
	"errors"
	"sync"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

type memCredentialStore struct {
	mu    sync.Mutex
	rows  map[string]models.AccountCredential
	finds int
	saves int
	err   error
}

func newMemCredentialStore(creds ...models.AccountCredential) *memCredentialStore {
	s := &memCredentialStore{rows: map[string]models.AccountCredential{}}
	for _, c := range creds {
		s.rows[string(c.AccountKind)+"|"+c.AccountID] = c
	}
	return s
}

func (s *memCredentialStore) FindCredential(_ context.Context, accountID string, kind models.AccountKind) (*models.AccountCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.rows[string(kind)+"|"+accountID]
	if !ok {
		return nil, syncerr.ErrCredentialNotFound
	}
	return &c, nil
}

func (s *memCredentialStore) SaveCredential(_ context.Context, cred *models.AccountCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.rows[string(cred.AccountKind)+"|"+cred.AccountID] = *cred
	return nil
}

func (s *memCredentialStore) get(accountID string, kind models.AccountKind) models.AccountCredential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[string(kind)+"|"+accountID]
}

type stubRefresher struct {
	mu      sync.Mutex
	token   string
	err     error
	calls   int
	block   chan struct{}
	entered chan struct{}
}

func (r *stubRefresher) Refresh(ctx context.Context, _ string, _ models.AccountKind) (string, error) {
	if r.entered != nil {
		select {
		case r.entered <- struct{}{}:
		default:
		}
	}
	if r.block != nil {
		<-r.block
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.token, r.err
}

func (r *stubRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type stubGrants struct {
	exchange *ghl.TokenGrant
	refresh  *ghl.TokenGrant
	err      error

	gotRefreshToken string
	gotCode         string
	gotUserType     string
}

func (g *stubGrants) Refresh(_ context.Context, refreshToken string) (*ghl.TokenGrant, error) {
	g.gotRefreshToken = refreshToken
	return g.refresh, g.err
}

func (g *stubGrants) Exchange(_ context.Context, code, userType string) (*ghl.TokenGrant, error) {
	g.gotCode = code
	g.gotUserType = userType
	return g.exchange, g.err
}

type stubLocations struct {
	loc *ghl.Location
	err error
}

func (l *stubLocations) GetLocation(context.Context, string, string) (*ghl.Location, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.loc, nil
}

var errRefreshDown = errors.New("token endpoint down")
