package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/jobs"
	"github.com/noah-isme/volunteer-hub-api/pkg/mailer"
)

const (
	notificationJobType = "notification.send"
	requeuePageSize     = 200
)

type notificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListQueued(ctx context.Context, after models.OutboxCursor, limit int) ([]models.Notification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, cause string) error
	MarkDead(ctx context.Context, id string, cause string) error
}

type adminEmailSource interface {
	AdminEmails(ctx context.Context) ([]string, error)
}

// Notifier accepts notifications for asynchronous delivery.
type Notifier interface {
	Enqueue(ctx context.Context, batch []models.Notification) models.DispatchResult
	AdminRecipients(ctx context.Context) ([]string, error)
}

// NotificationConfig tunes the delivery workers.
type NotificationConfig struct {
	Workers       int
	BufferSize    int
	MaxRetries    int
	RetryDelay    time.Duration
	SweepInterval time.Duration
	AdminEmails   []string
}

// NotificationService persists notifications to the outbox and delivers them through a worker queue.
type NotificationService struct {
	repo    notificationRepository
	admins  adminEmailSource
	mailer  mailer.Mailer
	metrics *MetricsService
	logger  *zap.Logger
	queue   *jobs.Queue

	adminEmails   []string
	sweepInterval time.Duration

	// ids currently buffered, running or waiting for a retry
	inflight  sync.Map
	sweeper   sync.WaitGroup
	stopSweep context.CancelFunc
}

// NewNotificationService wires the outbox, mailer and queue together.
func NewNotificationService(repo notificationRepository, admins adminEmailSource, m mailer.Mailer, metrics *MetricsService, logger *zap.Logger, cfg NotificationConfig) *NotificationService {
	svc := &NotificationService{
		repo:        repo,
		admins:      admins,
		mailer:      m,
		metrics:     metrics,
		logger:      newLogger(logger),
		adminEmails:   cfg.AdminEmails,
		sweepInterval: cfg.SweepInterval,
	}
	svc.queue = jobs.NewQueue("notifications", svc.deliver, jobs.QueueConfig{
		Workers:      cfg.Workers,
		BufferSize:   cfg.BufferSize,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		Logger:       svc.logger,
		OnDeadLetter: svc.deadLetter,
	})
	return svc
}

// Start launches the delivery workers and, when an interval is configured,
// the sweep that schedules outbox rows the queue had no room for.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if s.sweepInterval <= 0 {
		return
	}
	sweepCtx, cancel := context.WithCancel(ctx)
	s.stopSweep = cancel
	s.sweeper.Add(1)
	go func() {
		defer s.sweeper.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := s.RequeuePending(sweepCtx); err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Warn("notification sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop ends the sweep and drains the workers.
func (s *NotificationService) Stop() {
	if s.stopSweep != nil {
		s.stopSweep()
		s.sweeper.Wait()
	}
	s.queue.Stop()
}

// Enqueue stores each notification and schedules its delivery without waiting
// for queue room. Rows the queue cannot take stay queued for the next sweep.
// Store failures are counted, never returned.
func (s *NotificationService) Enqueue(ctx context.Context, batch []models.Notification) models.DispatchResult {
	var result models.DispatchResult
	for i := range batch {
		n := batch[i]
		if strings.TrimSpace(n.Recipient) == "" {
			result.Skipped++
			continue
		}
		inserted, err := s.repo.Insert(ctx, &n)
		if err != nil {
			s.logger.Warn("failed to store notification",
				zap.String("kind", string(n.Kind)),
				zap.String("reference_id", n.ReferenceID),
				zap.Error(err),
			)
			result.Failed++
			continue
		}
		if !inserted {
			result.Skipped++
			continue
		}
		if err := s.schedule(n); err != nil {
			s.logger.Info("notification left for the outbox sweep", zap.String("notification_id", n.ID), zap.Error(err))
		}
		result.Queued++
	}
	return result
}

// AdminRecipients returns the configured admin addresses or, when none are set, the admin accounts.
func (s *NotificationService) AdminRecipients(ctx context.Context) ([]string, error) {
	if len(s.adminEmails) > 0 {
		return s.adminEmails, nil
	}
	if s.admins == nil {
		return nil, nil
	}
	return s.admins.AdminEmails(ctx)
}

// RequeuePending pages through the queued outbox and schedules every row that
// is not already in flight. It stops early, without error, once the queue is full;
// the remaining rows wait for the next sweep.
func (s *NotificationService) RequeuePending(ctx context.Context) (int, error) {
	var (
		cursor models.OutboxCursor
		count  int
	)
	for {
		page, err := s.repo.ListQueued(ctx, cursor, requeuePageSize)
		if err != nil {
			return count, fmt.Errorf("list queued notifications: %w", err)
		}
		for _, n := range page {
			if _, busy := s.inflight.Load(n.ID); busy {
				continue
			}
			if err := s.schedule(n); err != nil {
				if errors.Is(err, jobs.ErrFull) {
					s.logRequeued(count)
					return count, nil
				}
				return count, err
			}
			count++
		}
		if len(page) < requeuePageSize {
			s.logRequeued(count)
			return count, nil
		}
		last := page[len(page)-1]
		cursor = models.OutboxCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
}

func (s *NotificationService) logRequeued(count int) {
	if count > 0 {
		s.logger.Info("requeued pending notifications", zap.Int("count", count))
	}
}

// schedule pushes the row onto the queue and tracks it until it settles.
func (s *NotificationService) schedule(n models.Notification) error {
	if _, loaded := s.inflight.LoadOrStore(n.ID, struct{}{}); loaded {
		return nil
	}
	if err := s.queue.TryEnqueue(jobs.Job{ID: n.ID, Type: notificationJobType, Payload: n.Kind}); err != nil {
		s.inflight.Delete(n.ID)
		return err
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	n, err := s.repo.FindByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load notification %s: %w", job.ID, err)
	}
	if n.Status != models.OutboxQueued {
		s.inflight.Delete(n.ID)
		return nil
	}
	if err := s.mailer.Send(ctx, n.Recipient, n.Subject, n.Body); err != nil {
		if markErr := s.repo.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
			s.logger.Warn("failed to record notification attempt", zap.String("notification_id", n.ID), zap.Error(markErr))
		}
		if s.metrics != nil {
			s.metrics.RecordNotificationFailure(n.Kind)
		}
		return err
	}
	if err := s.repo.MarkSent(ctx, n.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to mark notification sent", zap.String("notification_id", n.ID), zap.Error(err))
	}
	s.inflight.Delete(n.ID)
	if s.metrics != nil {
		s.metrics.RecordNotificationSent(n.Kind)
	}
	return nil
}

func (s *NotificationService) deadLetter(ctx context.Context, job jobs.Job, cause error) {
	defer s.inflight.Delete(job.ID)
	kind, _ := job.Payload.(models.NotificationKind)
	fields := []zap.Field{
		zap.String("notification_id", job.ID),
		zap.String("kind", string(kind)),
		zap.Int("attempts", job.Attempt),
		zap.Error(cause),
	}
	if n, err := s.repo.FindByID(ctx, job.ID); err == nil {
		fields = append(fields,
			zap.String("recipient", n.Recipient),
			zap.String("reference_type", n.ReferenceType),
			zap.String("reference_id", n.ReferenceID),
		)
	}
	s.logger.Error("notification dead-lettered", fields...)

	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	if err := s.repo.MarkDead(ctx, job.ID, msg); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("failed to mark notification dead", zap.String("notification_id", job.ID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordNotificationDead(kind)
	}
}

// dispatchWarning turns a dispatch result into a client-facing warning, or "" when everything was queued.
func dispatchWarning(what string, r models.DispatchResult) string {
	if r.Failed == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %d of %d notifications could not be queued", what, r.Failed, r.Failed+r.Queued)
}
