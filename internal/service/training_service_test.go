package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type fakeTrainingStore struct {
	trainings    map[string]*models.Training
	participants map[string][]models.TrainingParticipant
	seq          int
}

func newFakeTrainingStore(trainings ...*models.Training) *fakeTrainingStore {
	f := &fakeTrainingStore{trainings: make(map[string]*models.Training), participants: make(map[string][]models.TrainingParticipant)}
	for _, tr := range trainings {
		f.trainings[tr.ID] = tr
	}
	return f
}

func (f *fakeTrainingStore) FindByID(ctx context.Context, id string) (*models.Training, error) {
	tr, ok := f.trainings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *tr
	cp.ParticipantCount = len(f.participants[id])
	return &cp, nil
}

func (f *fakeTrainingStore) List(ctx context.Context, filter models.TrainingFilter) ([]models.Training, int, error) {
	var out []models.Training
	for id, tr := range f.trainings {
		cp := *tr
		cp.ParticipantCount = len(f.participants[id])
		out = append(out, cp)
	}
	return out, len(out), nil
}

func (f *fakeTrainingStore) Create(ctx context.Context, training *models.Training) error {
	f.seq++
	training.ID = fmt.Sprintf("t%d", f.seq)
	cp := *training
	f.trainings[training.ID] = &cp
	return nil
}

func (f *fakeTrainingStore) Update(ctx context.Context, training *models.Training) error {
	if _, ok := f.trainings[training.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *training
	f.trainings[training.ID] = &cp
	return nil
}

func (f *fakeTrainingStore) UpdatePoster(ctx context.Context, id, url string) error {
	tr, ok := f.trainings[id]
	if !ok {
		return sql.ErrNoRows
	}
	tr.PosterURL = &url
	return nil
}

func (f *fakeTrainingStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.trainings[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.trainings, id)
	delete(f.participants, id)
	return nil
}

func (f *fakeTrainingStore) AddParticipant(ctx context.Context, participant *models.TrainingParticipant) error {
	for _, p := range f.participants[participant.TrainingID] {
		if p.VolunteerID == participant.VolunteerID {
			return &pq.Error{Code: "23505", Constraint: "training_participants_uniq"}
		}
	}
	participant.ID = participant.TrainingID + "-" + participant.VolunteerID
	participant.Status = models.ParticipantStatusPending
	f.participants[participant.TrainingID] = append(f.participants[participant.TrainingID], *participant)
	return nil
}

func (f *fakeTrainingStore) RemoveParticipant(ctx context.Context, trainingID, volunteerID string) error {
	list := f.participants[trainingID]
	for i, p := range list {
		if p.VolunteerID == volunteerID {
			f.participants[trainingID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeTrainingStore) MarkAttendance(ctx context.Context, trainingID, volunteerID string, attended bool, day models.Date) error {
	list := f.participants[trainingID]
	for i := range list {
		if list[i].VolunteerID == volunteerID {
			list[i].Attended = attended
			if attended {
				list[i].Status = models.ParticipantStatusCompleted
				list[i].CompletionDate = &day
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeTrainingStore) ListParticipants(ctx context.Context, trainingID string) ([]models.TrainingParticipant, error) {
	return append([]models.TrainingParticipant(nil), f.participants[trainingID]...), nil
}

func (f *fakeTrainingStore) ListJoinedIDs(ctx context.Context, volunteerID string) ([]string, error) {
	var ids []string
	for id, list := range f.participants {
		for _, p := range list {
			if p.VolunteerID == volunteerID {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func sampleTraining(id string) *models.Training {
	return &models.Training{
		ID:              id,
		Title:           "Premiers secours",
		Date:            models.NewDate(time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)),
		DurationHours:   2,
		MaxParticipants: 1,
		Status:          models.TrainingStatusScheduled,
	}
}

func TestTrainingServiceCreate(t *testing.T) {
	store := newFakeTrainingStore()
	svc := NewTrainingService(store, nil, nil, nil, nil, nil, nil)

	training, err := svc.Create(context.Background(), adminSession(), dto.TrainingRequest{Title: "Logistique", Date: "2026-12-03", DurationHours: 3, MaxParticipants: 15})
	require.NoError(t, err)
	assert.Equal(t, models.TrainingStatusScheduled, training.Status)
	assert.Equal(t, "admin-user", *training.CreatedBy)

	_, err = svc.Create(context.Background(), adminSession(), dto.TrainingRequest{Title: "Logistique", Date: "03/12/2026", DurationHours: 3, MaxParticipants: 15})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestTrainingServiceJoinAndList(t *testing.T) {
	store := newFakeTrainingStore(sampleTraining("t1"), sampleTraining("t2"))
	svc := NewTrainingService(store, nil, nil, nil, nil, nil, nil)

	_, err := svc.Join(context.Background(), volunteerSession("p1"), "t1")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), volunteerSession("p1"), "t1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	_, err = svc.Join(context.Background(), volunteerSession("p2"), "t1")
	require.NoError(t, err, "capacity is advisory for trainings")

	_, err = svc.Join(context.Background(), volunteerSession("p1"), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	views, _, err := svc.List(context.Background(), volunteerSession("p1"), false, 0, 0)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		if v.ID == "t1" {
			assert.True(t, v.Joined)
			assert.Equal(t, -1, v.SpotsLeft)
		} else {
			assert.False(t, v.Joined)
			assert.Equal(t, 1, v.SpotsLeft)
		}
	}
}

func TestTrainingServiceLeave(t *testing.T) {
	store := newFakeTrainingStore(sampleTraining("t1"))
	svc := NewTrainingService(store, nil, nil, nil, nil, nil, nil)
	_, err := svc.Join(context.Background(), volunteerSession("p1"), "t1")
	require.NoError(t, err)

	require.NoError(t, svc.Leave(context.Background(), volunteerSession("p1"), "t1"))
	err = svc.Leave(context.Background(), volunteerSession("p1"), "t1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestTrainingServiceMarkAttendance(t *testing.T) {
	store := newFakeTrainingStore(sampleTraining("t1"))
	stats := &countingStats{}
	svc := NewTrainingService(store, nil, nil, stats, nil, nil, nil)
	_, err := svc.Join(context.Background(), volunteerSession("p1"), "t1")
	require.NoError(t, err)

	require.NoError(t, svc.MarkAttendance(context.Background(), adminSession(), "t1", "p1", dto.AttendanceRequest{Attended: true}))
	participants, err := svc.Participants(context.Background(), adminSession(), "t1")
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.True(t, participants[0].Attended)
	assert.Equal(t, models.ParticipantStatusCompleted, participants[0].Status)
	assert.Equal(t, 1, stats.calls)

	err = svc.MarkAttendance(context.Background(), adminSession(), "t1", "p9", dto.AttendanceRequest{Attended: true})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestTrainingServiceCancel(t *testing.T) {
	store := newFakeTrainingStore(sampleTraining("t1"))
	store.participants["t1"] = []models.TrainingParticipant{
		{VolunteerID: "p1", VolunteerName: strPtr("Amel"), VolunteerEmail: strPtr("amel@example.com")},
		{VolunteerID: "p2", VolunteerName: strPtr("Amel bis"), VolunteerEmail: strPtr("Amel@Example.com")},
		{VolunteerID: "p3", VolunteerName: strPtr("Sans mail")},
	}
	notifier := &recordingNotifier{}
	audit := &memoryAudit{}
	svc := NewTrainingService(store, nil, notifier, nil, audit, nil, nil)

	resp, warnings, err := svc.Cancel(context.Background(), adminSession(), "t1")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Premiers secours", resp.Title)
	assert.Equal(t, 1, resp.Notified)
	assert.Equal(t, models.DispatchSent, resp.NotificationStatus)
	assert.Equal(t, models.NotificationTrainingCancelled, notifier.all()[0].Kind)
	assert.NotContains(t, store.trainings, "t1")
	assert.Len(t, audit.entries, 1)

	_, _, err = svc.Cancel(context.Background(), adminSession(), "t1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestTrainingServiceCancelWithFailedNotifications(t *testing.T) {
	store := newFakeTrainingStore(sampleTraining("t1"))
	store.participants["t1"] = []models.TrainingParticipant{{VolunteerID: "p1", VolunteerEmail: strPtr("amel@example.com")}}
	svc := NewTrainingService(store, nil, &recordingNotifier{fail: true}, nil, nil, nil, nil)

	resp, warnings, err := svc.Cancel(context.Background(), adminSession(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.DispatchFailed, resp.NotificationStatus)
	assert.Len(t, warnings, 1)
	assert.NotContains(t, store.trainings, "t1")
}

func TestTrainingServiceCancelNotifiesBeforeDeleting(t *testing.T) {
	store := newFakeTrainingStore(sampleTraining("t1"))
	store.participants["t1"] = []models.TrainingParticipant{{VolunteerID: "p1", VolunteerEmail: strPtr("amel@example.com")}}
	existedAtSend := false
	notifier := &hookNotifier{recordingNotifier: &recordingNotifier{}, before: func() {
		_, existedAtSend = store.trainings["t1"]
	}}
	svc := NewTrainingService(store, nil, notifier, nil, nil, nil, nil)

	_, _, err := svc.Cancel(context.Background(), adminSession(), "t1")
	require.NoError(t, err)

	assert.True(t, existedAtSend)
	assert.NotContains(t, store.trainings, "t1")
}

func TestTrainingServiceCancelRequiresAdmin(t *testing.T) {
	store := newFakeTrainingStore(sampleTraining("t1"))
	store.participants["t1"] = []models.TrainingParticipant{{VolunteerID: "p1", VolunteerEmail: strPtr("amel@example.com")}}
	notifier := &recordingNotifier{}
	svc := NewTrainingService(store, nil, notifier, nil, nil, nil, nil)

	_, _, err := svc.Cancel(context.Background(), volunteerSession("p1"), "t1")

	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
	assert.Contains(t, store.trainings, "t1")
	assert.Empty(t, notifier.all())
}
