// Package reminders keeps the set of armed reminders in step with the
// reminders table and runs each firing: record a notification, deliver it,
// and move recurring reminders to their next occurrence.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/delivery"
	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/notifications"
	"github.com/anonto42/health-tracker/backend/internal/scheduler"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

const defaultDeliveryTimeout = 15 * time.Second

// ReminderRepository is the part of the reminder storage the service needs.
type ReminderRepository interface {
	GetReminderByID(ctx context.Context, id uint) (*models.Reminder, error)
	ListActiveAfter(ctx context.Context, after time.Time) ([]models.Reminder, error)
	ListActive(ctx context.Context) ([]models.Reminder, error)
	UpdateReminderTime(ctx context.Context, id uint, at time.Time) error
}

// UserLookup resolves the owner of a reminder to a delivery address.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Config struct {
	// RecoverOverdue makes InitializeAll also arm active reminders whose
	// time passed while the process was down. They fire once, immediately.
	RecoverOverdue  bool
	DeliveryTimeout time.Duration
	FireConcurrency int
	// FallbackEmail receives reminders whose owner has no email address.
	FallbackEmail string
	StoreBackend  string
}

type Option func(*Service)

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

type Service struct {
	repo     ReminderRepository
	users    UserLookup
	store    notifications.Store
	channels []delivery.Channel
	cfg      Config
	clock    clockwork.Clock
	log      *slog.Logger

	sched      *scheduler.Scheduler
	locks      *keyedMutex
	deliveries sync.WaitGroup
}

// Status summarizes the notification pipeline for the settings endpoint.
type Status struct {
	Channels       map[string]bool `json:"channels"`
	EmailEnabled   bool            `json:"email_enabled"`
	FallbackEmail  bool            `json:"fallback_email_configured"`
	ArmedReminders int             `json:"armed_reminders"`
	StoreBackend   string          `json:"store_backend"`
	RecoverOverdue bool            `json:"recover_overdue"`
}

func NewService(
	repo ReminderRepository,
	users UserLookup,
	store notifications.Store,
	channels []delivery.Channel,
	cfg Config,
	log *slog.Logger,
	opts ...Option,
) *Service {
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}

	s := &Service{
		repo:     repo,
		users:    users,
		store:    store,
		channels: channels,
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		log:      log.With("service", "reminders"),
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sched = scheduler.New(
		func(ctx context.Context, id uint) { s.Fire(ctx, id) },
		scheduler.WithClock(s.clock),
		scheduler.WithLogger(s.log),
		scheduler.WithConcurrency(cfg.FireConcurrency),
	)
	return s
}

// Start runs the dispatcher. Call InitializeAll afterwards to arm stored
// reminders.
func (s *Service) Start(ctx context.Context) {
	s.sched.Start(ctx)
}

// Stop halts dispatching and waits for running firings and deliveries.
func (s *Service) Stop() {
	s.sched.Stop()
	s.deliveries.Wait()
}

// Schedule arms the reminder at its reminder time, replacing any earlier arm.
// A reminder already due fires right away. It reports false when the
// reminder does not exist or is inactive.
func (s *Service) Schedule(ctx context.Context, id uint) bool {
	reminder, ok := s.load(ctx, id)
	if !ok {
		return false
	}
	s.arm(reminder)
	return true
}

// Cancel disarms the reminder and reports whether it was armed. A firing
// already under way still completes.
func (s *Service) Cancel(id uint) bool {
	disarmed := s.sched.Disarm(id)
	if disarmed {
		s.log.Debug("reminder disarmed", "reminder_id", id)
	}
	return disarmed
}

// IsArmed reports whether the reminder is waiting to fire.
func (s *Service) IsArmed(id uint) bool {
	return s.sched.IsArmed(id)
}

// Update disarms the reminder, runs persist and arms the reminder again from
// its stored state. It holds the reminder's lock so an edit never interleaves
// with a firing advancing the same reminder; persist must read the reminder
// itself rather than reuse a copy loaded before the call. When persist fails
// the stored state is armed again unchanged.
func (s *Service) Update(ctx context.Context, id uint, persist func(ctx context.Context) error) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.Cancel(id)
	if err := persist(ctx); err != nil {
		s.Schedule(ctx, id)
		return false, err
	}
	return s.Schedule(ctx, id), nil
}

// Remove disarms the reminder and runs persist under the reminder's lock.
func (s *Service) Remove(ctx context.Context, id uint, persist func(ctx context.Context) error) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.Cancel(id)
	return persist(ctx)
}

// Fire delivers the reminder and records its notification. Recurring
// reminders are advanced and armed for their next occurrence. Fire reports
// false when the reminder is gone or inactive, when the notification cannot
// be stored, or when the advanced time cannot be saved. A reminder moved to a
// later time after this firing was dispatched is left armed for that time
// and not fired.
func (s *Service) Fire(ctx context.Context, id uint) bool {
	unlock := s.locks.Lock(id)
	defer unlock()

	reminder, ok := s.load(ctx, id)
	if !ok {
		return false
	}
	log := s.log.With("reminder_id", id)

	if reminder.ReminderTime.After(s.clock.Now()) {
		if !s.sched.IsArmed(id) {
			s.arm(reminder)
		}
		log.Info("reminder moved later, firing skipped", "reminder_time", reminder.ReminderTime)
		return false
	}
	// An edit may have armed this occurrence again; it is being fired now.
	s.sched.Disarm(id)

	snap := reminder.Snapshot()
	n := notifications.FromSnapshot(snap, s.clock.Now().UTC())

	s.deliver(ctx, s.recipientFor(ctx, reminder), snap)

	if err := s.store.Append(ctx, &n); err != nil {
		log.Error("store reminder notification", "error", err)
		return false
	}
	log.Info("reminder fired", "notification_id", n.ID, "title", reminder.Title)

	next, recurring := NextOccurrence(reminder.ReminderTime, reminder.RepeatInterval)
	if !recurring {
		return true
	}

	if err := s.repo.UpdateReminderTime(ctx, id, next); err != nil {
		log.Error("advance recurring reminder, not re-armed", "next", next, "error", err)
		return false
	}
	if !s.Schedule(ctx, id) {
		log.Warn("recurring reminder advanced but not re-armed", "next", next)
	}
	return true
}

// InitializeAll arms every active reminder due after now, plus overdue ones
// when RecoverOverdue is set, and returns how many were armed.
func (s *Service) InitializeAll(ctx context.Context) int {
	now := s.clock.Now()

	upcoming, err := s.repo.ListActiveAfter(ctx, now)
	if err != nil {
		s.log.Error("load upcoming reminders", "error", err)
		return 0
	}

	armed := 0
	for i := range upcoming {
		s.arm(&upcoming[i])
		armed++
	}

	if s.cfg.RecoverOverdue {
		active, err := s.repo.ListActive(ctx)
		if err != nil {
			s.log.Error("load overdue reminders", "error", err)
		}
		for i := range active {
			if active[i].ReminderTime.After(now) {
				continue
			}
			s.arm(&active[i])
			armed++
		}
	}

	s.log.Info("reminders initialized", "armed", armed, "recover_overdue", s.cfg.RecoverOverdue)
	return armed
}

// ListPendingNotifications returns unread notifications, oldest first.
func (s *Service) ListPendingNotifications(ctx context.Context) ([]models.Notification, error) {
	return s.store.ListUnread(ctx)
}

// MarkNotificationRead reports false when no notification has the ID.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (bool, error) {
	return s.store.MarkRead(ctx, id)
}

// SendTestNotification pushes a synthetic health-check reminder through the
// store and the delivery channels. It is never saved as a reminder. userID
// selects the recipient; zero delivers to the fallback address only.
func (s *Service) SendTestNotification(ctx context.Context, userID uint) bool {
	now := s.clock.Now().UTC()
	snap := models.ReminderSnapshot{
		ID:           "test",
		UserID:       userID,
		ReminderType: models.ReminderTypeHealthCheck,
		Title:        "Test Notification",
		Message:      "This is a test notification from your Health Management System.",
		ReminderTime: now,
	}

	recipient := delivery.Recipient{Email: s.cfg.FallbackEmail, Method: models.MethodEmail}
	if userID != 0 {
		recipient = s.recipientFor(ctx, &models.Reminder{UserID: userID, NotificationMethod: models.MethodApp})
	}
	s.deliver(ctx, recipient, snap)

	n := notifications.FromSnapshot(snap, now)
	if err := s.store.Append(ctx, &n); err != nil {
		s.log.Error("store test notification", "error", err)
		return false
	}
	s.log.Info("test notification sent", "notification_id", n.ID)
	return true
}

func (s *Service) Status() Status {
	st := Status{
		Channels:       make(map[string]bool, len(s.channels)),
		FallbackEmail:  s.cfg.FallbackEmail != "",
		ArmedReminders: s.sched.Len(),
		StoreBackend:   s.cfg.StoreBackend,
		RecoverOverdue: s.cfg.RecoverOverdue,
	}
	for _, ch := range s.channels {
		st.Channels[ch.Name()] = ch.IsEnabled()
		if ch.Name() == "email" && ch.IsEnabled() {
			st.EmailEnabled = true
		}
	}
	return st
}

func (s *Service) arm(reminder *models.Reminder) {
	now := s.clock.Now()
	s.sched.Arm(reminder.ID, reminder.ReminderTime)

	if !reminder.ReminderTime.After(now) {
		s.log.Info("reminder overdue, firing now", "reminder_id", reminder.ID, "reminder_time", reminder.ReminderTime)
		return
	}
	s.log.Debug("reminder armed", "reminder_id", reminder.ID, "in", reminder.ReminderTime.Sub(now).Round(time.Second))
}

func (s *Service) load(ctx context.Context, id uint) (*models.Reminder, bool) {
	reminder, err := s.repo.GetReminderByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Info("reminder not found", "reminder_id", id)
		return nil, false
	}
	if err != nil {
		s.log.Error("load reminder", "reminder_id", id, "error", err)
		return nil, false
	}
	if !reminder.IsActive {
		s.log.Info("reminder inactive", "reminder_id", id)
		return nil, false
	}
	return reminder, true
}

func (s *Service) recipientFor(ctx context.Context, reminder *models.Reminder) delivery.Recipient {
	r := delivery.Recipient{Method: reminder.NotificationMethod}

	if s.users != nil && reminder.UserID != 0 {
		user, err := s.users.GetUserByID(ctx, reminder.UserID)
		if err != nil {
			s.log.Warn("resolve reminder owner", "reminder_id", reminder.ID, "user_id", reminder.UserID, "error", err)
		} else {
			r.Name = user.FullName()
			r.Email = user.Email
			r.DeviceToken = user.DeviceToken
		}
	}
	if r.Email == "" {
		r.Email = s.cfg.FallbackEmail
	}
	return r
}

// deliver hands snap to every channel that can reach r. Each send runs in
// its own goroutine with its own timeout so a slow transport never delays
// the notification store.
func (s *Service) deliver(ctx context.Context, r delivery.Recipient, snap models.ReminderSnapshot) {
	if r.Method == models.MethodSMS {
		s.log.Warn("sms delivery is not supported", "reminder_id", snap.ID)
	}

	base := context.WithoutCancel(ctx)
	for _, ch := range s.channels {
		if !ch.IsEnabled() || !ch.Accepts(r) {
			continue
		}

		s.deliveries.Add(1)
		go func(ch delivery.Channel) {
			defer s.deliveries.Done()
			defer func() {
				if p := recover(); p != nil {
					s.log.Error("delivery panicked",
						"channel", ch.Name(),
						"reminder_id", snap.ID,
						"panic", fmt.Sprint(p),
						"stack", string(debug.Stack()),
					)
				}
			}()

			dctx, cancel := context.WithTimeout(base, s.cfg.DeliveryTimeout)
			defer cancel()

			if !ch.Send(dctx, r, snap) {
				s.log.Warn("reminder delivery failed", "channel", ch.Name(), "reminder_id", snap.ID)
			}
		}(ch)
	}
}
