package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

type datedEvents struct {
	byDay map[string][]models.Event
	asked []string
}

func (d *datedEvents) ListByDate(ctx context.Context, day models.Date) ([]models.Event, error) {
	d.asked = append(d.asked, day.String())
	return d.byDay[day.String()], nil
}

type eventContacts struct {
	byEvent  map[string][]models.ProfileContact
	statuses [][]models.EventStatus
	failFor  string
}

func (e *eventContacts) NotifiableContacts(ctx context.Context, eventID string, statuses []models.EventStatus) ([]models.ProfileContact, error) {
	e.statuses = append(e.statuses, statuses)
	if eventID == e.failFor {
		return nil, errors.New("boom")
	}
	return e.byEvent[eventID], nil
}

func mustDate(t *testing.T, raw string) models.Date {
	t.Helper()
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return d
}

func TestReminderServiceRunOnceTargetsTomorrow(t *testing.T) {
	tomorrow := mustDate(t, "2026-05-11")
	beach := sampleEvent("evt-1", models.EventStatusInProgress)
	beach.Date = tomorrow
	beach.Time = strPtr("09:00")
	events := &datedEvents{byDay: map[string][]models.Event{"2026-05-11": {*beach}}}
	contacts := &eventContacts{byEvent: map[string][]models.ProfileContact{
		"evt-1": {
			{ID: "vol-1", FullName: "Amel", Email: "Amel@Example.org "},
			{ID: "vol-1", FullName: "Amel", Email: "amel@example.org"},
			{ID: "vol-2", FullName: "Sami", Email: ""},
		},
	}}
	notifier := &recordingNotifier{}
	svc, err := NewReminderService(events, contacts, notifier, nil, ReminderConfig{})
	require.NoError(t, err)

	run, err := svc.RunOnce(context.Background(), mustDate(t, "2026-05-10"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-05-11"}, events.asked)
	assert.Equal(t, 1, run.Events)
	assert.Equal(t, 1, run.Queued)
	assert.Equal(t, [][]models.EventStatus{{models.EventStatusInProgress}}, contacts.statuses)

	sent := notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "amel@example.org", sent[0].Recipient)
	assert.Equal(t, "Rappel : Nettoyage de plage demain", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "09:00")
	require.NotNil(t, sent[0].DedupeKey)
	assert.Contains(t, *sent[0].DedupeKey, "2026-05-11")
}

func TestReminderServiceSkipsCancelledAndFailedLookups(t *testing.T) {
	day := mustDate(t, "2026-05-11")
	cancelled := sampleEvent("evt-c", models.EventStatusCancelled)
	broken := sampleEvent("evt-b", models.EventStatusPending)
	events := &datedEvents{byDay: map[string][]models.Event{day.String(): {*cancelled, *broken}}}
	contacts := &eventContacts{failFor: "evt-b"}
	notifier := &recordingNotifier{}
	svc, err := NewReminderService(events, contacts, notifier, nil, ReminderConfig{})
	require.NoError(t, err)

	run, err := svc.RunOnce(context.Background(), mustDate(t, "2026-05-10"))
	require.NoError(t, err)
	assert.Equal(t, 1, run.Events)
	assert.Zero(t, run.Queued)
	assert.Empty(t, notifier.all())
}

func TestReminderServiceRejectsUnknownTimezone(t *testing.T) {
	_, err := NewReminderService(&datedEvents{}, &eventContacts{}, &recordingNotifier{}, nil, ReminderConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)
}

func TestReminderServiceStartValidatesSpec(t *testing.T) {
	svc, err := NewReminderService(&datedEvents{}, &eventContacts{}, &recordingNotifier{}, nil, ReminderConfig{Spec: "not a spec"})
	require.NoError(t, err)
	require.Error(t, svc.Start(context.Background()))

	svc, err = NewReminderService(&datedEvents{}, &eventContacts{}, &recordingNotifier{}, nil, ReminderConfig{Spec: "0 8 * * *", Timezone: "Africa/Tunis"})
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	svc.Stop()
	svc.Stop()
}

func TestReminderServiceTodayUsesTimezone(t *testing.T) {
	svc, err := NewReminderService(&datedEvents{}, &eventContacts{}, &recordingNotifier{}, nil, ReminderConfig{Timezone: "Africa/Tunis"})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 5, 10, 23, 30, 0, 0, time.UTC) }
	assert.Equal(t, "2026-05-11", svc.Today().String())
}
