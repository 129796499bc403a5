package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type fakeMessageStore struct {
	msgs map[string]*models.Message
	seq  int
}

func newFakeMessageStore(msgs ...*models.Message) *fakeMessageStore {
	f := &fakeMessageStore{msgs: make(map[string]*models.Message)}
	for _, m := range msgs {
		f.msgs[m.ID] = m
	}
	return f
}

func (f *fakeMessageStore) Create(ctx context.Context, msg *models.Message) error {
	f.seq++
	msg.ID = fmt.Sprintf("m%d", f.seq)
	cp := *msg
	f.msgs[msg.ID] = &cp
	return nil
}

func (f *fakeMessageStore) FindByID(ctx context.Context, id string) (*models.Message, error) {
	m, ok := f.msgs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessageStore) inBox(m *models.Message, box models.MessageBox) bool {
	if m.RecipientID == nil {
		return box.IncludeAdmins
	}
	return *m.RecipientID == box.ProfileID
}

func (f *fakeMessageStore) Inbox(ctx context.Context, box models.MessageBox) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.msgs {
		if f.inBox(m, box) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) Sent(ctx context.Context, senderID string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.msgs {
		if m.SenderID == senderID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) MarkRead(ctx context.Context, id string) error {
	m, ok := f.msgs[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.IsRead = true
	return nil
}

func (f *fakeMessageStore) CountUnread(ctx context.Context, box models.MessageBox) (int, error) {
	n := 0
	for _, m := range f.msgs {
		if !m.IsRead && f.inBox(m, box) {
			n++
		}
	}
	return n, nil
}

const (
	volunteerA = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	volunteerB = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	adminID    = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
)

func messagingAdmin() *models.Session {
	s := adminSession()
	s.ProfileID = adminID
	return s
}

func newTestMessageService(store *fakeMessageStore) (*MessageService, *countingStats) {
	profiles := newFakeProfileStore(activeProfile(volunteerA), activeProfile(volunteerB), activeProfile(adminID))
	stats := &countingStats{}
	return NewMessageService(store, profiles, stats, nil, nil), stats
}

func TestMessageServiceVolunteerWritesToAdmins(t *testing.T) {
	store := newFakeMessageStore()
	svc, stats := newTestMessageService(store)

	msg, err := svc.Send(context.Background(), volunteerSession(volunteerA), dto.SendMessageRequest{Subject: " Question ", Content: "Bonjour"})
	require.NoError(t, err)
	assert.Nil(t, msg.RecipientID)
	assert.Equal(t, "Question", msg.Subject)
	assert.Equal(t, 1, stats.calls)

	inbox, err := svc.Inbox(context.Background(), messagingAdmin())
	require.NoError(t, err)
	assert.Len(t, inbox, 1)

	unread, err := svc.UnreadCount(context.Background(), messagingAdmin())
	require.NoError(t, err)
	assert.Equal(t, 1, unread.Unread)

	volunteerInbox, err := svc.Inbox(context.Background(), volunteerSession(volunteerB))
	require.NoError(t, err)
	assert.Empty(t, volunteerInbox)
}

func TestMessageServiceVolunteerCannotWriteToOtherVolunteers(t *testing.T) {
	svc, _ := newTestMessageService(newFakeMessageStore())
	recipient := volunteerB

	_, err := svc.Send(context.Background(), volunteerSession(volunteerA), dto.SendMessageRequest{RecipientID: &recipient, Subject: "Hi", Content: "x"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
}

func TestMessageServiceVolunteerRepliesToAdmin(t *testing.T) {
	recipient := volunteerA
	store := newFakeMessageStore(&models.Message{ID: "dddddddd-dddd-4ddd-8ddd-dddddddddddd", SenderID: adminID, RecipientID: &recipient, Subject: "Bienvenue", Content: "..."})
	svc, _ := newTestMessageService(store)
	parent := "dddddddd-dddd-4ddd-8ddd-dddddddddddd"
	to := adminID

	msg, err := svc.Send(context.Background(), volunteerSession(volunteerA), dto.SendMessageRequest{RecipientID: &to, ParentID: &parent, Subject: "Re: Bienvenue", Content: "Merci"})
	require.NoError(t, err)
	assert.Equal(t, adminID, *msg.RecipientID)

	_, err = svc.Send(context.Background(), volunteerSession(volunteerB), dto.SendMessageRequest{RecipientID: &to, ParentID: &parent, Subject: "Re", Content: "x"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
}

func TestMessageServiceAdminWritesToVolunteer(t *testing.T) {
	store := newFakeMessageStore()
	svc, _ := newTestMessageService(store)
	to := volunteerA

	_, err := svc.Send(context.Background(), messagingAdmin(), dto.SendMessageRequest{RecipientID: &to, Subject: "Info", Content: "Rendez-vous"})
	require.NoError(t, err)

	unknown := "eeeeeeee-eeee-4eee-8eee-eeeeeeeeeeee"
	_, err = svc.Send(context.Background(), messagingAdmin(), dto.SendMessageRequest{RecipientID: &unknown, Subject: "Info", Content: "x"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	inbox, err := svc.Inbox(context.Background(), volunteerSession(volunteerA))
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	err = svc.MarkRead(context.Background(), volunteerSession(volunteerB), inbox[0].ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))

	require.NoError(t, svc.MarkRead(context.Background(), volunteerSession(volunteerA), inbox[0].ID))
	unread, err := svc.UnreadCount(context.Background(), volunteerSession(volunteerA))
	require.NoError(t, err)
	assert.Equal(t, 0, unread.Unread)

	sent, err := svc.Sent(context.Background(), messagingAdmin())
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestMessageServiceRejectsInvalidPayload(t *testing.T) {
	svc, _ := newTestMessageService(newFakeMessageStore())
	_, err := svc.Send(context.Background(), volunteerSession(volunteerA), dto.SendMessageRequest{Subject: "", Content: "x"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}
