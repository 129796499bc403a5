package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type fakeAssignmentStore struct {
	rows      map[string]*models.Assignment
	contacts  []models.ProfileContact
	seq       int
	createErr error
	credited  map[string]float64
}

func newFakeAssignmentStore(rows ...*models.Assignment) *fakeAssignmentStore {
	f := &fakeAssignmentStore{rows: make(map[string]*models.Assignment), credited: make(map[string]float64)}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeAssignmentStore) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssignmentStore) FindActive(ctx context.Context, volunteerID, eventID string) (*models.Assignment, error) {
	for _, a := range f.rows {
		if a.VolunteerID == volunteerID && a.EventID == eventID && a.Status != models.EventStatusCancelled {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignmentStore) ExistsActive(ctx context.Context, volunteerID, eventID string) (bool, error) {
	_, err := f.FindActive(ctx, volunteerID, eventID)
	return err == nil, nil
}

func (f *fakeAssignmentStore) CountActive(ctx context.Context, eventID string) (int, error) {
	n := 0
	for _, a := range f.rows {
		if a.EventID == eventID && a.Status != models.EventStatusCancelled {
			n++
		}
	}
	return n, nil
}

func (f *fakeAssignmentStore) CountPending(ctx context.Context) (int, error) {
	n := 0
	for _, a := range f.rows {
		if a.Status == models.EventStatusPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeAssignmentStore) Create(ctx context.Context, assignment *models.Assignment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	assignment.ID = fmt.Sprintf("a%d", f.seq)
	cp := *assignment
	f.rows[assignment.ID] = &cp
	return nil
}

func (f *fakeAssignmentStore) Transition(ctx context.Context, id string, from, to models.EventStatus) error {
	a, ok := f.rows[id]
	if !ok || a.Status != from {
		return sql.ErrNoRows
	}
	a.Status = to
	return nil
}

func (f *fakeAssignmentStore) Complete(ctx context.Context, id string, hours float64, notes *string) error {
	a, ok := f.rows[id]
	if !ok || a.Status != models.EventStatusInProgress {
		return sql.ErrNoRows
	}
	a.Status = models.EventStatusCompleted
	a.HoursLogged = &hours
	a.Notes = notes
	f.credited[a.VolunteerID] += hours
	return nil
}

func (f *fakeAssignmentStore) DeleteWithdrawable(ctx context.Context, volunteerID, eventID string) error {
	for id, a := range f.rows {
		if a.VolunteerID == volunteerID && a.EventID == eventID &&
			(a.Status == models.EventStatusPending || a.Status == models.EventStatusInProgress) {
			delete(f.rows, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeAssignmentStore) details(keep func(*models.Assignment) bool) []models.AssignmentDetail {
	var out []models.AssignmentDetail
	for _, a := range f.rows {
		if !keep(a) {
			continue
		}
		out = append(out, models.AssignmentDetail{Assignment: *a, EventTitle: strPtr("Event " + a.EventID), VolunteerName: strPtr("Volunteer " + a.VolunteerID)})
	}
	return out
}

func (f *fakeAssignmentStore) ListByVolunteer(ctx context.Context, volunteerID string) ([]models.AssignmentDetail, error) {
	return f.details(func(a *models.Assignment) bool { return a.VolunteerID == volunteerID }), nil
}

func (f *fakeAssignmentStore) ListPending(ctx context.Context) ([]models.AssignmentDetail, error) {
	return f.details(func(a *models.Assignment) bool { return a.Status == models.EventStatusPending }), nil
}

func (f *fakeAssignmentStore) ListByEvent(ctx context.Context, eventID string) ([]models.AssignmentDetail, error) {
	return f.details(func(a *models.Assignment) bool { return a.EventID == eventID }), nil
}

func (f *fakeAssignmentStore) NotifiableContacts(ctx context.Context, eventID string, statuses []models.EventStatus) ([]models.ProfileContact, error) {
	return f.contacts, nil
}

func activeProfile(id string) *models.Profile {
	p := &models.Profile{ID: id, FullName: "Amel", Email: id + "@example.com", Status: statusPtr(models.ProfileStatusActive)}
	fillProfile(p)
	return p
}

type registrationFixture struct {
	svc         *RegistrationService
	assignments *fakeAssignmentStore
	events      *fakeEventStore
	notifier    *recordingNotifier
	stats       *countingStats
	audit       *memoryAudit
}

func newRegistrationFixture(cfg RegistrationConfig, events []*models.Event, profiles []*models.Profile, rows ...*models.Assignment) *registrationFixture {
	f := &registrationFixture{
		assignments: newFakeAssignmentStore(rows...),
		events:      newFakeEventStore(events...),
		notifier:    &recordingNotifier{},
		stats:       &countingStats{},
		audit:       &memoryAudit{},
	}
	f.svc = NewRegistrationService(f.assignments, f.events, newFakeProfileStore(profiles...), f.notifier, f.stats, f.audit, nil, nil, cfg)
	return f
}

func TestRegistrationServiceRegister(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, []*models.Profile{activeProfile("p1")})

	assignment, err := f.svc.Register(context.Background(), volunteerSession("p1"), "e1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPending, assignment.Status)
	assert.Equal(t, "p1", assignment.VolunteerID)
	assert.Nil(t, assignment.AssignedBy)
	assert.Equal(t, 1, f.stats.calls)

	_, err = f.svc.Register(context.Background(), volunteerSession("p1"), "e1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyRegistered.Code))
}

func TestRegistrationServiceRegisterGuards(t *testing.T) {
	pending := pendingProfile("p2")
	events := []*models.Event{
		sampleEvent("open", models.EventStatusInProgress),
		sampleEvent("done", models.EventStatusCompleted),
		sampleEvent("gone", models.EventStatusCancelled),
	}
	tests := []struct {
		name    string
		profile string
		event   string
		code    string
	}{
		{name: "pending profile", profile: "p2", event: "open", code: appErrors.ErrProfilePending.Code},
		{name: "completed event", profile: "p1", event: "done", code: appErrors.ErrPreconditionFailed.Code},
		{name: "cancelled event", profile: "p1", event: "gone", code: appErrors.ErrPreconditionFailed.Code},
		{name: "missing event", profile: "p1", event: "nope", code: appErrors.ErrNotFound.Code},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newRegistrationFixture(RegistrationConfig{}, events, []*models.Profile{activeProfile("p1"), pending})
			_, err := f.svc.Register(context.Background(), volunteerSession(tc.profile), tc.event)
			assert.True(t, appErrors.HasCode(err, tc.code), "got %v", err)
			assert.Empty(t, f.assignments.rows)
		})
	}
}

func TestRegistrationServiceRegisterMapsActiveIndexViolation(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, []*models.Profile{activeProfile("p1")})
	f.assignments.createErr = &pq.Error{Code: "23505", Constraint: activeAssignmentIndex}

	_, err := f.svc.Register(context.Background(), volunteerSession("p1"), "e1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyRegistered.Code))
}

func TestRegistrationServiceCapacity(t *testing.T) {
	full := []*models.Assignment{
		{ID: "x1", EventID: "e1", VolunteerID: "o1", Status: models.EventStatusPending},
		{ID: "x2", EventID: "e1", VolunteerID: "o2", Status: models.EventStatusInProgress},
	}

	advisory := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, []*models.Profile{activeProfile("p1")}, full...)
	_, err := advisory.svc.Register(context.Background(), volunteerSession("p1"), "e1")
	require.NoError(t, err)

	enforced := newRegistrationFixture(RegistrationConfig{EnforceCapacity: true}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, []*models.Profile{activeProfile("p1")}, full...)
	_, err = enforced.svc.Register(context.Background(), volunteerSession("p1"), "e1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed.Code))
}

func TestRegistrationServiceValidateAndReject(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, nil, nil,
		&models.Assignment{ID: "a1", EventID: "e1", VolunteerID: "p1", Status: models.EventStatusPending},
		&models.Assignment{ID: "a2", EventID: "e1", VolunteerID: "p2", Status: models.EventStatusPending},
	)

	resp, err := f.svc.Validate(context.Background(), adminSession(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusInProgress, resp.Assignment.Status)
	assert.Equal(t, 1, resp.PendingCount)

	resp, err = f.svc.Reject(context.Background(), adminSession(), "a2")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, resp.Assignment.Status)
	assert.Equal(t, 0, resp.PendingCount)
	assert.Len(t, f.audit.entries, 2)

	_, err = f.svc.Validate(context.Background(), adminSession(), "a1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	_, err = f.svc.Reject(context.Background(), adminSession(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = f.svc.Validate(context.Background(), volunteerSession("p1"), "a2")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
}

func TestRegistrationServiceRejectedVolunteerCanRegisterAgain(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, []*models.Profile{activeProfile("p1")},
		&models.Assignment{ID: "old", EventID: "e1", VolunteerID: "p1", Status: models.EventStatusCancelled},
	)

	assignment, err := f.svc.Register(context.Background(), volunteerSession("p1"), "e1")
	require.NoError(t, err)
	assert.NotEqual(t, "old", assignment.ID)
}

func TestRegistrationServiceComplete(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, nil, nil,
		&models.Assignment{ID: "a1", EventID: "e1", VolunteerID: "p1", Status: models.EventStatusInProgress},
		&models.Assignment{ID: "a2", EventID: "e1", VolunteerID: "p2", Status: models.EventStatusPending},
	)

	_, err := f.svc.Complete(context.Background(), adminSession(), "a1", dto.CompleteRegistrationRequest{Hours: 0})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	assignment, err := f.svc.Complete(context.Background(), adminSession(), "a1", dto.CompleteRegistrationRequest{Hours: 3.5, Notes: "great"})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, assignment.Status)
	assert.Equal(t, 3.5, f.assignments.credited["p1"])

	_, err = f.svc.Complete(context.Background(), adminSession(), "a1", dto.CompleteRegistrationRequest{Hours: 1})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))
	assert.Equal(t, 3.5, f.assignments.credited["p1"])

	_, err = f.svc.Complete(context.Background(), adminSession(), "a2", dto.CompleteRegistrationRequest{Hours: 1})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))
}

func TestRegistrationServiceWithdraw(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, nil, nil,
		&models.Assignment{ID: "a1", EventID: "e1", VolunteerID: "p1", Status: models.EventStatusInProgress},
		&models.Assignment{ID: "a2", EventID: "e2", VolunteerID: "p1", Status: models.EventStatusCompleted},
	)

	require.NoError(t, f.svc.Withdraw(context.Background(), volunteerSession("p1"), "e1"))
	_, ok := f.assignments.rows["a1"]
	assert.False(t, ok)

	err := f.svc.Withdraw(context.Background(), volunteerSession("p1"), "e1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	err = f.svc.Withdraw(context.Background(), volunteerSession("p1"), "e2")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed.Code))
	assert.Contains(t, f.assignments.rows, "a2")
}

func TestRegistrationServiceAssign(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, []*models.Profile{activeProfile("11111111-1111-4111-8111-111111111111")})

	assignment, err := f.svc.Assign(context.Background(), adminSession(), "e1", dto.AssignVolunteerRequest{VolunteerID: "11111111-1111-4111-8111-111111111111"})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusInProgress, assignment.Status)
	require.NotNil(t, assignment.AssignedBy)
	assert.Equal(t, "admin-user", *assignment.AssignedBy)

	_, err = f.svc.Assign(context.Background(), adminSession(), "e1", dto.AssignVolunteerRequest{VolunteerID: "11111111-1111-4111-8111-111111111111"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyRegistered.Code))
}

func TestRegistrationServiceListsDropOrphans(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, nil,
		&models.Assignment{ID: "a1", EventID: "e1", VolunteerID: "p1", Status: models.EventStatusPending},
	)

	mine, err := f.svc.ListMine(context.Background(), volunteerSession("p1"))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	pending, err := f.svc.ListPending(context.Background(), adminSession())
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	byEvent, err := f.svc.ListForEvent(context.Background(), adminSession(), "e1")
	require.NoError(t, err)
	assert.Len(t, byEvent, 1)

	_, err = f.svc.ListForEvent(context.Background(), adminSession(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestRegistrationServiceCancelEvent(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusInProgress)}, nil)
	f.assignments.contacts = []models.ProfileContact{
		{ID: "p1", FullName: "Amel", Email: "amel@example.com"},
		{ID: "p2", FullName: "Sami", Email: "AMEL@example.com"},
		{ID: "p3", FullName: "Ines", Email: "ines@example.com"},
		{ID: "p4", FullName: "Nour", Email: " "},
	}

	resp, warnings, err := f.svc.CancelEvent(context.Background(), adminSession(), "e1")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, models.EventStatusCancelled, resp.Event.Status)
	assert.Equal(t, 2, resp.Notified)
	assert.Equal(t, models.DispatchSent, resp.NotificationStatus)
	require.Len(t, f.notifier.batches, 1)
	for _, n := range f.notifier.batches[0] {
		assert.Equal(t, models.NotificationCancellation, n.Kind)
		assert.Contains(t, n.Subject, "Nettoyage de plage")
	}

	resp, _, err = f.svc.CancelEvent(context.Background(), adminSession(), "e1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, resp.Event.Status)
	assert.Len(t, f.notifier.batches, 2)

	_, _, err = f.svc.CancelEvent(context.Background(), adminSession(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestRegistrationServiceCancelEventNotificationFailure(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, nil)
	f.assignments.contacts = []models.ProfileContact{{ID: "p1", FullName: "Amel", Email: "amel@example.com"}}
	f.notifier.fail = true

	resp, warnings, err := f.svc.CancelEvent(context.Background(), adminSession(), "e1")
	require.NoError(t, err)
	assert.Equal(t, models.DispatchFailed, resp.NotificationStatus)
	assert.Equal(t, 0, resp.Notified)
	assert.NotEmpty(t, warnings)
	assert.Equal(t, models.EventStatusCancelled, f.events.events["e1"].Status)
}

func TestRegistrationServiceCancelEventRequiresAdmin(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusPending)}, []*models.Profile{activeProfile("p1")})
	f.assignments.contacts = []models.ProfileContact{{ID: "p1", FullName: "Amel", Email: "amel@example.com"}}

	_, _, err := f.svc.CancelEvent(context.Background(), volunteerSession("p1"), "e1")

	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
	assert.Equal(t, models.EventStatusPending, f.events.events["e1"].Status)
	assert.Empty(t, f.notifier.batches)
}

func TestRegistrationServiceCancelEventMarksCancelledBeforeNotifying(t *testing.T) {
	f := newRegistrationFixture(RegistrationConfig{}, []*models.Event{sampleEvent("e1", models.EventStatusInProgress)}, nil)
	f.assignments.contacts = []models.ProfileContact{{ID: "p1", FullName: "Amel", Email: "amel@example.com"}}
	var statusAtSend models.EventStatus
	notifier := &hookNotifier{recordingNotifier: f.notifier, before: func() {
		statusAtSend = f.events.events["e1"].Status
	}}
	svc := NewRegistrationService(f.assignments, f.events, newFakeProfileStore(), notifier, f.stats, f.audit, nil, nil, RegistrationConfig{})

	_, _, err := svc.CancelEvent(context.Background(), adminSession(), "e1")
	require.NoError(t, err)

	assert.Equal(t, models.EventStatusCancelled, statusAtSend)
	assert.Len(t, f.notifier.batches, 1)
}
