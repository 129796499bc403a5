package service

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

type recordingNotifier struct {
	mu         sync.Mutex
	batches    [][]models.Notification
	fail       bool
	admins     []string
	recipients error
}

func (n *recordingNotifier) Enqueue(ctx context.Context, batch []models.Notification) models.DispatchResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, batch)
	if n.fail {
		return models.DispatchResult{Failed: len(batch)}
	}
	return models.DispatchResult{Queued: len(batch)}
}

func (n *recordingNotifier) AdminRecipients(ctx context.Context) ([]string, error) {
	if n.recipients != nil {
		return nil, n.recipients
	}
	return n.admins, nil
}

func (n *recordingNotifier) all() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Notification
	for _, b := range n.batches {
		out = append(out, b...)
	}
	return out
}

type countingStats struct {
	calls int
}

func (c *countingStats) InvalidateStats(ctx context.Context) { c.calls++ }

type memoryAudit struct {
	entries []*models.AuditLog
}

func (m *memoryAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.entries = append(m.entries, log)
	return nil
}

var errStoreDown = errors.New("store down")

func adminSession() *models.Session {
	return &models.Session{UserID: "admin-user", ProfileID: "admin-profile", Role: models.RoleAdmin}
}

func volunteerSession(profileID string) *models.Session {
	return &models.Session{UserID: "user-" + profileID, ProfileID: profileID, Role: models.RoleVolunteer}
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.ProfileStatus) *models.ProfileStatus { return &s }

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }

// hookNotifier runs before on each batch so a test can observe the store at send time.
type hookNotifier struct {
	*recordingNotifier
	before func()
}

func (n *hookNotifier) Enqueue(ctx context.Context, batch []models.Notification) models.DispatchResult {
	if n.before != nil {
		n.before()
	}
	return n.recordingNotifier.Enqueue(ctx, batch)
}
