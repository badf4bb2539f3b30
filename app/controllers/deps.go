package controllers

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/calendarsync"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SlotSync/internal/pkg/token"
)

// TokenSource hands out access tokens per account.
type TokenSource interface {
	Token(ctx context.Context, accountID string, kind models.AccountKind, opts ...token.RequestOption) (string, error)
}

// RemoteAPI is the subset of the platform client the handlers call directly.
type RemoteAPI interface {
	ActiveCalendars(ctx context.Context, token, locationID string) ([]ghl.CalendarSummary, error)
	FreeSlots(ctx context.Context, token, calendarID string, q ghl.FreeSlotsQuery) (json.RawMessage, error)
	CreateAppointment(ctx context.Context, token string, in ghl.AppointmentRequest) (json.RawMessage, error)
	UpsertContact(ctx context.Context, token string, in ghl.ContactRequest) (json.RawMessage, error)
	CreateCustomField(ctx context.Context, token, locationID string) (json.RawMessage, error)
	GetLocation(ctx context.Context, token, locationID string) (*ghl.Location, error)
	GetCompany(ctx context.Context, token, companyID string) (json.RawMessage, error)
}

type Syncer interface {
	SyncCalendar(ctx context.Context, calendarID, accountID string) (*calendarsync.CalendarSyncResult, error)
	SyncBookedSlots(ctx context.Context, calendarID, accountID string) (*calendarsync.BookingSyncResult, error)
}

type JobQueue interface {
	EnqueueCalendarSync(ctx context.Context, calendarID, locationID string) (*jobqueue.Job, error)
	EnqueueBookedSlotsSync(ctx context.Context, calendarID, locationID string) (*jobqueue.Job, error)
	GetJob(ctx context.Context, jobID string) (*jobqueue.Job, error)
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
	GetQueueSize(ctx context.Context) (int64, error)
	GetProcessingSize(ctx context.Context) (int64, error)
}

type AuthURLBuilder interface {
	AuthCodeURL(state string) string
}

type CodeAuthorizer interface {
	Authorize(ctx context.Context, code, userType string) (*models.AccountCredential, error)
}

var validate = validator.New()
