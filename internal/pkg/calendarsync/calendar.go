package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
)

type CalendarSyncResult struct {
	Success       bool                   `json:"success"`
	CalendarID    string                 `json:"calendar_id"`
	SavedID       uint                   `json:"saved_id"`
	Created       bool                   `json:"created"`
	Timezone      string                 `json:"timezone"`
	OpenHourIDs   []uint                 `json:"open_hour_ids"`
	TeamMemberIDs []uint                 `json:"team_member_ids"`
	Failures      []*syncerr.RecordError `json:"failures,omitempty"`
}

// SyncCalendar mirrors one calendar, its weekly open hours (in UTC) and its
// team members. Failures of single open-hours days or team members are
// collected in the result and do not fail the call.
func (s *Service) SyncCalendar(ctx context.Context, calendarID, accountID string) (*CalendarSyncResult, error) {
	if calendarID == "" || accountID == "" {
		return nil, fmt.Errorf("calendarId and locationId: %w", syncerr.ErrMissingArgument)
	}

	tok, err := s.token(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cal, err := s.api.GetCalendar(ctx, tok, calendarID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, fmt.Errorf("calendar %s: %w", calendarID, syncerr.ErrRemoteCalendarNotFound)
	}
	if cal.ID == "" {
		cal.ID = calendarID
	}

	rec := normalizeCalendar(cal, accountID)
	saved, err := reconcile.Reconcile(ctx, s.stores.Calendars, rec)
	if err != nil {
		log.Errorf("[CalendarSync] saving calendar %s failed: %v", calendarID, err)
		return nil, fmt.Errorf("calendar %s: %w: %w", calendarID, syncerr.ErrCalendarPersistFailed, err)
	}

	tz := s.locationTimezone(ctx, accountID)
	result := &CalendarSyncResult{
		Success:    true,
		CalendarID: cal.ID,
		SavedID:    saved.ID,
		Created:    saved.Created,
		Timezone:   tz,
	}

	var openHours, teamMembers reconcile.Outcome
	var g errgroup.Group
	g.Go(func() error {
		openHours = s.saveOpenHours(ctx, cal, saved.ID, tz)
		return nil
	})
	g.Go(func() error {
		teamMembers = s.saveTeamMembers(ctx, cal, saved.ID)
		return nil
	})
	_ = g.Wait()

	result.OpenHourIDs = ids(openHours)
	result.TeamMemberIDs = ids(teamMembers)
	result.Failures = append(append(result.Failures, openHours.Failures...), teamMembers.Failures...)

	log.Infof("[CalendarSync] calendar %s saved as %d: %d open-hours days, %d team members, %d failures",
		calendarID, saved.ID, len(result.OpenHourIDs), len(result.TeamMemberIDs), len(result.Failures))
	return result, nil
}

func (s *Service) locationTimezone(ctx context.Context, accountID string) string {
	if s.timezones == nil {
		return "UTC"
	}
	tz, err := s.timezones.LocationTimezone(ctx, accountID)
	if err != nil {
		log.Warnf("[CalendarSync] timezone of location %s unavailable, using UTC: %v", accountID, err)
		return "UTC"
	}
	if tz == "" {
		return "UTC"
	}
	return tz
}

// saveOpenHours expands every (entry, day, hour block) into one row per day.
// When several blocks target the same day, the last one wins.
func (s *Service) saveOpenHours(ctx context.Context, cal *ghl.Calendar, calendarUUID uint, tz string) reconcile.Outcome {
	loc, err := loadZone(tz)
	if err != nil {
		log.Errorf("[CalendarSync] unknown timezone %q for calendar %s, storing open hours unconverted: %v", tz, cal.ID, err)
		loc = nil
	}
	on := s.now()

	byDay := make(map[int]*models.OpenHoursEntry)
	var order []int
	var invalid []*syncerr.RecordError
	for _, oh := range cal.OpenHours {
		for _, day := range oh.DaysOfTheWeek {
			if day < 0 || day > 6 {
				invalid = append(invalid, &syncerr.RecordError{
					Entity: "open_hours",
					Key:    models.ColOpenHoursDay + "=" + strconv.Itoa(day),
					Err:    errors.New("day of week out of range"),
				})
				continue
			}
			for _, h := range oh.Hours {
				openH, openM := ToUTC(h.OpenHour, h.OpenMinute, loc, on)
				closeH, closeM := ToUTC(h.CloseHour, h.CloseMinute, loc, on)
				if _, seen := byDay[day]; !seen {
					order = append(order, day)
				}
				byDay[day] = &models.OpenHoursEntry{
					CalendarRecordID: calendarUUID,
					DayOfWeek:        day,
					OpenHour:         openH,
					OpenMinute:       openM,
					CloseHour:        closeH,
					CloseMinute:      closeM,
					CalendarID:       cal.ID,
				}
			}
		}
	}

	entries := make([]*models.OpenHoursEntry, 0, len(order))
	for _, day := range order {
		entries = append(entries, byDay[day])
	}

	out := reconcile.ReconcileEach(ctx, s.stores.OpenHours, "open_hours", entries, reconcile.WithConcurrency(s.concurrency))
	for _, f := range invalid {
		log.Errorf("[CalendarSync] skipping %v", f)
	}
	out.Failures = append(invalid, out.Failures...)
	return out
}

func (s *Service) saveTeamMembers(ctx context.Context, cal *ghl.Calendar, calendarUUID uint) reconcile.Outcome {
	var members []*models.TeamMemberAssignment
	var invalid []*syncerr.RecordError
	for _, m := range cal.TeamMembers {
		if m.UserID == "" {
			invalid = append(invalid, &syncerr.RecordError{
				Entity: "team_member",
				Key:    models.ColTeamMemberUser + "=",
				Err:    errors.New("missing user id"),
			})
			continue
		}
		members = append(members, &models.TeamMemberAssignment{
			CalendarRecordID: calendarUUID,
			UserID:           m.UserID,
			Priority:         m.Priority,
			IsPrimary:        m.IsPrimary,
			CalendarID:       cal.ID,
		})
	}

	out := reconcile.ReconcileEach(ctx, s.stores.TeamMembers, "team_member", members, reconcile.WithConcurrency(s.concurrency))
	for _, f := range invalid {
		log.Errorf("[CalendarSync] skipping %v", f)
	}
	out.Failures = append(invalid, out.Failures...)
	return out
}

func ids(o reconcile.Outcome) []uint {
	succeeded := o.Succeeded()
	out := make([]uint, 0, len(succeeded))
	for _, r := range succeeded {
		out = append(out, r.ID)
	}
	return out
}
