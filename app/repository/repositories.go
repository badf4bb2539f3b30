package repository

import (
	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/calendarsync"
	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile"
	"github.com/ManuelReschke/SlotSync/internal/pkg/security"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Credentials    *CredentialRepository
	AccountDetails *AccountDetailRepository
	Calendars      *reconcile.GormStore[models.CalendarRecord, *models.CalendarRecord]
	OpenHours      *reconcile.GormStore[models.OpenHoursEntry, *models.OpenHoursEntry]
	TeamMembers    *reconcile.GormStore[models.TeamMemberAssignment, *models.TeamMemberAssignment]
	Events         *reconcile.GormStore[models.BookedSlotEvent, *models.BookedSlotEvent]
}

// NewRepositories creates a new instance of all repositories. rdb may be nil.
func NewRepositories(db *gorm.DB, cipher *security.TokenCipher, rdb *redis.Client) *Repositories {
	return &Repositories{
		Credentials:    NewCredentialRepository(db, cipher),
		AccountDetails: NewAccountDetailRepository(db, rdb),
		Calendars:      reconcile.NewGormStore[models.CalendarRecord](db),
		OpenHours:      reconcile.NewGormStore[models.OpenHoursEntry](db),
		TeamMembers:    reconcile.NewGormStore[models.TeamMemberAssignment](db),
		Events:         reconcile.NewGormStore[models.BookedSlotEvent](db),
	}
}

// SyncStores returns the stores the calendar synchronizers write to.
func (r *Repositories) SyncStores() calendarsync.Stores {
	return calendarsync.Stores{
		Calendars:   r.Calendars,
		OpenHours:   r.OpenHours,
		TeamMembers: r.TeamMembers,
		Events:      r.Events,
	}
}
