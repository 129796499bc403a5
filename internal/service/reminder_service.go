package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

type reminderEvents interface {
	ListByDate(ctx context.Context, day models.Date) ([]models.Event, error)
}

type reminderContacts interface {
	NotifiableContacts(ctx context.Context, eventID string, statuses []models.EventStatus) ([]models.ProfileContact, error)
}

// ReminderConfig schedules the daily reminder run.
type ReminderConfig struct {
	Spec     string
	Timezone string
}

// ReminderRun summarises one reminder pass.
type ReminderRun struct {
	Day     models.Date `json:"day"`
	Events  int         `json:"events"`
	Queued  int         `json:"queued"`
	Skipped int         `json:"skipped"`
	Failed  int         `json:"failed"`
}

// ReminderService emails confirmed volunteers the day before their event.
type ReminderService struct {
	events   reminderEvents
	contacts reminderContacts
	notifier Notifier
	logger   *zap.Logger
	cfg      ReminderConfig
	loc      *time.Location
	now      func() time.Time

	mu    sync.Mutex
	sched *cron.Cron
}

// NewReminderService validates the timezone and builds the service.
func NewReminderService(events reminderEvents, contacts reminderContacts, notifier Notifier, logger *zap.Logger, cfg ReminderConfig) (*ReminderService, error) {
	if cfg.Spec == "" {
		cfg.Spec = "0 8 * * *"
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load reminder timezone: %w", err)
		}
		loc = l
	}
	return &ReminderService{
		events:   events,
		contacts: contacts,
		notifier: notifier,
		logger:   newLogger(logger),
		cfg:      cfg,
		loc:      loc,
		now:      time.Now,
	}, nil
}

// Today is the current calendar day in the reminder timezone.
func (s *ReminderService) Today() models.Date {
	return models.NewDate(s.now().In(s.loc))
}

// RunOnce queues reminders for events held the day after day.
func (s *ReminderService) RunOnce(ctx context.Context, day models.Date) (*ReminderRun, error) {
	target := models.NewDate(day.AddDate(0, 0, 1))
	run := &ReminderRun{Day: target}

	events, err := s.events.ListByDate(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", target, err)
	}
	for i := range events {
		event := &events[i]
		if event.Status == models.EventStatusCancelled {
			continue
		}
		run.Events++
		contacts, err := s.contacts.NotifiableContacts(ctx, event.ID, []models.EventStatus{models.EventStatusInProgress})
		if err != nil {
			s.logger.Warn("failed to resolve reminder recipients", zap.String("event_id", event.ID), zap.Error(err))
			continue
		}
		batch := make([]models.Notification, 0, len(contacts))
		seen := make(map[string]struct{}, len(contacts))
		for _, c := range contacts {
			email := strings.ToLower(strings.TrimSpace(c.Email))
			if email == "" {
				continue
			}
			if _, dup := seen[email]; dup {
				continue
			}
			seen[email] = struct{}{}
			c.Email = email
			batch = append(batch, reminderMail(c, event, target))
		}
		if len(batch) == 0 {
			continue
		}
		result := s.notifier.Enqueue(ctx, batch)
		run.Queued += result.Queued
		run.Skipped += result.Skipped
		run.Failed += result.Failed
	}

	s.logger.Info("event reminders processed",
		zap.String("day", target.String()),
		zap.Int("events", run.Events),
		zap.Int("queued", run.Queued),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
	)
	return run, nil
}

// Start registers the daily job on a cron scheduler.
func (s *ReminderService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched != nil {
		return nil
	}
	sched := cron.New(cron.WithLocation(s.loc))
	if _, err := sched.AddFunc(s.cfg.Spec, func() {
		if _, err := s.RunOnce(ctx, s.Today()); err != nil {
			s.logger.Error("event reminder run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", s.cfg.Spec, err)
	}
	sched.Start()
	s.sched = sched
	s.logger.Info("event reminders scheduled", zap.String("spec", s.cfg.Spec), zap.String("timezone", s.loc.String()))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *ReminderService) Stop() {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.mu.Unlock()
	if sched == nil {
		return
	}
	<-sched.Stop().Done()
}
