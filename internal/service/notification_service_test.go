package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

type fakeOutbox struct {
	mu        sync.Mutex
	rows      map[string]*models.Notification
	dedupe    map[string]bool
	insertErr error
	pages     int
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{rows: make(map[string]*models.Notification), dedupe: make(map[string]bool)}
}

func (f *fakeOutbox) Insert(ctx context.Context, n *models.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if n.DedupeKey != nil {
		if f.dedupe[*n.DedupeKey] {
			return false, nil
		}
		f.dedupe[*n.DedupeKey] = true
	}
	n.ID = uuid.NewString()
	n.Status = models.OutboxQueued
	n.CreatedAt = time.Now().UTC()
	row := *n
	f.rows[n.ID] = &row
	return true, nil
}

func (f *fakeOutbox) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (f *fakeOutbox) ListQueued(ctx context.Context, after models.OutboxCursor, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages++
	var out []models.Notification
	for _, row := range f.rows {
		if row.Status != models.OutboxQueued {
			continue
		}
		if row.CreatedAt.Before(after.CreatedAt) || (row.CreatedAt.Equal(after.CreatedAt) && row.ID <= after.ID) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string, at time.Time) error {
	return f.update(id, func(n *models.Notification) {
		n.Status = models.OutboxSent
		n.Attempts++
		n.SentAt = &at
	})
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, cause string) error {
	return f.update(id, func(n *models.Notification) {
		n.Attempts++
		n.LastError = &cause
	})
}

func (f *fakeOutbox) MarkDead(ctx context.Context, id string, cause string) error {
	return f.update(id, func(n *models.Notification) {
		n.Status = models.OutboxDead
		n.LastError = &cause
	})
}

func (f *fakeOutbox) update(id string, fn func(*models.Notification)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	fn(row)
	return nil
}

func (f *fakeOutbox) status(id string) models.OutboxStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Status
}

func (f *fakeOutbox) byKind(kind models.NotificationKind) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, row := range f.rows {
		if row.Kind == kind {
			out = append(out, *row)
		}
	}
	return out
}

type fakeMailer struct {
	mu       sync.Mutex
	failures int
	sent     []string
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type staticAdmins []string

func (s staticAdmins) AdminEmails(ctx context.Context) ([]string, error) { return s, nil }

func startNotificationService(t *testing.T, outbox *fakeOutbox, m *fakeMailer, metrics *MetricsService) *NotificationService {
	t.Helper()
	svc := NewNotificationService(outbox, staticAdmins{"admin@example.com"}, m, metrics, zap.NewNop(), NotificationConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
	})
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func TestNotificationServiceDeliversQueuedRows(t *testing.T) {
	outbox := newFakeOutbox()
	m := &fakeMailer{}
	svc := startNotificationService(t, outbox, m, nil)

	res := svc.Enqueue(context.Background(), []models.Notification{
		{Kind: models.NotificationCancellation, Recipient: "a@example.com", Subject: "s", Body: "b"},
		{Kind: models.NotificationCancellation, Recipient: "b@example.com", Subject: "s", Body: "b"},
		{Kind: models.NotificationCancellation, Recipient: "  ", Subject: "s", Body: "b"},
	})
	assert.Equal(t, 2, res.Queued)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, models.DispatchSent, res.Status())

	assert.Eventually(t, func() bool { return m.count() == 2 }, time.Second, 5*time.Millisecond)
	for _, n := range outbox.byKind(models.NotificationCancellation) {
		assert.Eventually(t, func() bool { return outbox.status(n.ID) == models.OutboxSent }, time.Second, 5*time.Millisecond)
	}
}

func TestNotificationServiceRetriesThenSends(t *testing.T) {
	outbox := newFakeOutbox()
	m := &fakeMailer{failures: 1}
	svc := startNotificationService(t, outbox, m, nil)

	svc.Enqueue(context.Background(), []models.Notification{{Kind: models.NotificationApproved, Recipient: "v@example.com"}})
	assert.Eventually(t, func() bool { return m.count() == 1 }, time.Second, 5*time.Millisecond)

	rows := outbox.byKind(models.NotificationApproved)
	require.Len(t, rows, 1)
	assert.Eventually(t, func() bool { return outbox.status(rows[0].ID) == models.OutboxSent }, time.Second, 5*time.Millisecond)
}

func TestNotificationServiceDeadLettersAfterRetries(t *testing.T) {
	outbox := newFakeOutbox()
	m := &fakeMailer{failures: -1}
	metrics := NewMetricsService()
	svc := startNotificationService(t, outbox, m, metrics)

	svc.Enqueue(context.Background(), []models.Notification{{Kind: models.NotificationRejected, Recipient: "v@example.com"}})
	rows := outbox.byKind(models.NotificationRejected)
	require.Len(t, rows, 1)

	assert.Eventually(t, func() bool { return outbox.status(rows[0].ID) == models.OutboxDead }, time.Second, 5*time.Millisecond)
	row, err := outbox.FindByID(context.Background(), rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Attempts)
	require.NotNil(t, row.LastError)
	assert.Contains(t, *row.LastError, "smtp unavailable")
	assert.Equal(t, 0, m.count())
}

func TestNotificationServiceEnqueueCountsStoreFailures(t *testing.T) {
	outbox := newFakeOutbox()
	outbox.insertErr = errors.New("db down")
	svc := startNotificationService(t, outbox, &fakeMailer{}, nil)

	res := svc.Enqueue(context.Background(), []models.Notification{{Kind: models.NotificationCancellation, Recipient: "a@example.com"}})
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, models.DispatchFailed, res.Status())
	assert.NotEmpty(t, dispatchWarning("event cancelled", res))
}

func TestNotificationServiceSkipsDuplicateDedupeKey(t *testing.T) {
	outbox := newFakeOutbox()
	svc := startNotificationService(t, outbox, &fakeMailer{}, nil)
	key := "reminder|e1|v@example.com|2026-10-18"

	first := svc.Enqueue(context.Background(), []models.Notification{{Kind: models.NotificationReminder, Recipient: "v@example.com", DedupeKey: &key}})
	second := svc.Enqueue(context.Background(), []models.Notification{{Kind: models.NotificationReminder, Recipient: "v@example.com", DedupeKey: &key}})
	assert.Equal(t, 1, first.Queued)
	assert.Equal(t, 0, second.Queued)
	assert.Equal(t, 1, second.Skipped)
}

func TestNotificationServiceRequeuePending(t *testing.T) {
	outbox := newFakeOutbox()
	_, err := outbox.Insert(context.Background(), &models.Notification{Kind: models.NotificationCancellation, Recipient: "left@example.com"})
	require.NoError(t, err)
	m := &fakeMailer{}
	svc := startNotificationService(t, outbox, m, nil)

	count, err := svc.RequeuePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Eventually(t, func() bool { return m.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestNotificationServiceAdminRecipientsPrefersConfig(t *testing.T) {
	svc := NewNotificationService(newFakeOutbox(), staticAdmins{"db@example.com"}, &fakeMailer{}, nil, nil, NotificationConfig{AdminEmails: []string{"ops@example.com"}})
	emails, err := svc.AdminRecipients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com"}, emails)

	svc = NewNotificationService(newFakeOutbox(), staticAdmins{"db@example.com"}, &fakeMailer{}, nil, nil, NotificationConfig{})
	emails, err = svc.AdminRecipients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"db@example.com"}, emails)
}

type gatedMailer struct {
	gate chan struct{}
	fakeMailer
}

func (m *gatedMailer) Send(ctx context.Context, to, subject, body string) error {
	select {
	case <-m.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return m.fakeMailer.Send(ctx, to, subject, body)
}

func cancellationBatch(n int) []models.Notification {
	batch := make([]models.Notification, n)
	for i := range batch {
		batch[i] = models.Notification{Kind: models.NotificationCancellation, Recipient: fmt.Sprintf("v%d@example.com", i), Subject: "s", Body: "b"}
	}
	return batch
}

func TestNotificationServiceEnqueueDoesNotWaitForDelivery(t *testing.T) {
	outbox := newFakeOutbox()
	m := &gatedMailer{gate: make(chan struct{})}
	svc := NewNotificationService(outbox, nil, m, nil, zap.NewNop(), NotificationConfig{
		Workers:       1,
		BufferSize:    2,
		SweepInterval: 10 * time.Millisecond,
	})
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)

	start := time.Now()
	res := svc.Enqueue(context.Background(), cancellationBatch(12))
	elapsed := time.Since(start)

	assert.Equal(t, 12, res.Queued)
	assert.Equal(t, models.DispatchSent, res.Status())
	assert.Less(t, elapsed, 200*time.Millisecond)

	close(m.gate)
	assert.Eventually(t, func() bool { return m.count() == 12 }, 2*time.Second, 10*time.Millisecond)
}

func TestNotificationServiceRequeuePendingPagesThroughOutbox(t *testing.T) {
	outbox := newFakeOutbox()
	for _, n := range cancellationBatch(requeuePageSize + 25) {
		n := n
		_, err := outbox.Insert(context.Background(), &n)
		require.NoError(t, err)
	}
	m := &fakeMailer{}
	svc := NewNotificationService(outbox, nil, m, nil, zap.NewNop(), NotificationConfig{Workers: 2, BufferSize: 500})
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)

	count, err := svc.RequeuePending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, requeuePageSize+25, count)
	assert.GreaterOrEqual(t, outbox.pages, 2)
	assert.Eventually(t, func() bool { return m.count() == requeuePageSize+25 }, 2*time.Second, 10*time.Millisecond)
}

func TestNotificationServiceRequeueStopsWhenQueueIsFull(t *testing.T) {
	outbox := newFakeOutbox()
	for _, n := range cancellationBatch(5) {
		n := n
		_, err := outbox.Insert(context.Background(), &n)
		require.NoError(t, err)
	}
	m := &gatedMailer{gate: make(chan struct{})}
	svc := NewNotificationService(outbox, nil, m, nil, zap.NewNop(), NotificationConfig{Workers: 1, BufferSize: 1})
	svc.Start(context.Background())
	t.Cleanup(func() {
		close(m.gate)
		svc.Stop()
	})

	count, err := svc.RequeuePending(context.Background())

	require.NoError(t, err)
	assert.Less(t, count, 5)
}
