// Package calendarsync mirrors remote calendar configuration and booked
// events into local storage.
package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

const defaultConcurrency = 4

type TokenProvider interface {
	UsableToken(ctx context.Context, accountID string, kind models.AccountKind) (string, error)
}

type CalendarAPI interface {
	GetCalendar(ctx context.Context, token, calendarID string) (*ghl.Calendar, error)
	ListEvents(ctx context.Context, token string, q ghl.EventQuery) ([]ghl.Event, error)
}

// TimezoneLookup returns the IANA zone of a location, or "" when unknown.
type TimezoneLookup interface {
	LocationTimezone(ctx context.Context, locationID string) (string, error)
}

type Stores struct {
	Calendars   reconcile.Store[*models.CalendarRecord]
	OpenHours   reconcile.Store[*models.OpenHoursEntry]
	TeamMembers reconcile.Store[*models.TeamMemberAssignment]
	Events      reconcile.Store[*models.BookedSlotEvent]
}

type Service struct {
	tokens      TokenProvider
	api         CalendarAPI
	timezones   TimezoneLookup
	stores      Stores
	now         func() time.Time
	concurrency int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithConcurrency bounds how many records of one batch are written in parallel.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewService(tokens TokenProvider, api CalendarAPI, timezones TimezoneLookup, stores Stores, opts ...Option) *Service {
	s := &Service{
		tokens:      tokens,
		api:         api,
		timezones:   timezones,
		stores:      stores,
		now:         time.Now,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// token resolves the location's access token. Every failure is reported as
// syncerr.ErrTokenUnavailable, keeping the underlying cause.
func (s *Service) token(ctx context.Context, accountID string) (string, error) {
	tok, err := s.tokens.UsableToken(ctx, accountID, models.AccountKindLocation)
	if err != nil {
		if errors.Is(err, syncerr.ErrTokenUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", syncerr.ErrTokenUnavailable, err)
	}
	if tok == "" {
		return "", fmt.Errorf("location %s: %w", accountID, syncerr.ErrTokenUnavailable)
	}
	return tok, nil
}
