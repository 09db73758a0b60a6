package reminders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/delivery"
	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/notifications"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRepo struct {
	mu        sync.Mutex
	reminders map[uint]models.Reminder
	updateErr error
	updates   int
}

func newFakeRepo(rs ...models.Reminder) *fakeRepo {
	repo := &fakeRepo{reminders: make(map[uint]models.Reminder)}
	for _, r := range rs {
		repo.reminders[r.ID] = r
	}
	return repo
}

func (f *fakeRepo) put(r models.Reminder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[r.ID] = r
}

func (f *fakeRepo) remove(id uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reminders, id)
}

func (f *fakeRepo) get(id uint) models.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reminders[id]
}

func (f *fakeRepo) GetReminderByID(_ context.Context, id uint) (*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeRepo) ListActiveAfter(_ context.Context, after time.Time) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reminder
	for _, r := range f.reminders {
		if r.IsActive && r.ReminderTime.After(after) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActive(_ context.Context) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reminder
	for _, r := range f.reminders {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateReminderTime(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	r, ok := f.reminders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.ReminderTime = at
	f.reminders[id] = r
	return nil
}

type fakeUsers map[uint]models.User

func (f fakeUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

type failingStore struct{}

func (failingStore) Append(context.Context, *models.Notification) error {
	return errors.New("disk full")
}

func (failingStore) ListUnread(context.Context) ([]models.Notification, error) { return nil, nil }

func (failingStore) MarkRead(context.Context, string) (bool, error) { return false, nil }

type sent struct {
	recipient delivery.Recipient
	snap      models.ReminderSnapshot
}

// fakeChannel records every send. When block is set, Send waits on it.
type fakeChannel struct {
	name    string
	enabled bool
	ok      bool
	block   chan struct{}
	sends   chan sent
}

func newFakeChannel(name string) *fakeChannel {
	return &fakeChannel{name: name, enabled: true, ok: true, sends: make(chan sent, 16)}
}

func (c *fakeChannel) Name() string                      { return c.name }
func (c *fakeChannel) IsEnabled() bool                   { return c.enabled }
func (c *fakeChannel) Accepts(r delivery.Recipient) bool { return r.Email != "" }

func (c *fakeChannel) Send(ctx context.Context, r delivery.Recipient, snap models.ReminderSnapshot) bool {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return false
		}
	}
	c.sends <- sent{recipient: r, snap: snap}
	return c.ok
}

func (c *fakeChannel) waitSend(t *testing.T) sent {
	t.Helper()
	select {
	case s := <-c.sends:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return sent{}
	}
}

type harness struct {
	svc     *Service
	repo    *fakeRepo
	store   notifications.Store
	clock   *clockwork.FakeClock
	channel *fakeChannel
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	cfg   Config
	store notifications.Store
	users UserLookup
}

func withConfig(cfg Config) harnessOption {
	return func(h *harnessConfig) { h.cfg = cfg }
}

func withStore(s notifications.Store) harnessOption {
	return func(h *harnessConfig) { h.store = s }
}

func withUsers(u UserLookup) harnessOption {
	return func(h *harnessConfig) { h.users = u }
}

func newHarness(t *testing.T, repo *fakeRepo, opts ...harnessOption) *harness {
	t.Helper()

	hc := harnessConfig{cfg: Config{FallbackEmail: "me@example.com", StoreBackend: "file"}}
	for _, opt := range opts {
		opt(&hc)
	}
	if hc.store == nil {
		fs, err := notifications.NewFileStore(filepath.Join(t.TempDir(), "notifications.json"), notifications.DefaultCapacity, discardLogger())
		require.NoError(t, err)
		hc.store = fs
	}

	clock := clockwork.NewFakeClockAt(now)
	channel := newFakeChannel("email")
	svc := NewService(repo, hc.users, hc.store, []delivery.Channel{channel}, hc.cfg, discardLogger(), WithClock(clock))

	return &harness{svc: svc, repo: repo, store: hc.store, clock: clock, channel: channel}
}

// start runs the dispatcher for the rest of the test.
func (h *harness) start(t *testing.T) {
	t.Helper()
	h.svc.Start(context.Background())
	t.Cleanup(h.svc.Stop)
}

func (h *harness) unread(t *testing.T) []models.Notification {
	t.Helper()
	list, err := h.svc.ListPendingNotifications(context.Background())
	require.NoError(t, err)
	return list
}

func (h *harness) waitUnread(t *testing.T, n int) []models.Notification {
	t.Helper()
	require.Eventually(t, func() bool { return len(h.unread(t)) == n }, 2*time.Second, 5*time.Millisecond)
	return h.unread(t)
}

func (h *harness) blockUntilTimers(t *testing.T, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, n))
}

func reminder(id uint, at time.Time, repeat string) models.Reminder {
	return models.Reminder{
		ID:                 id,
		UserID:             1,
		ReminderType:       models.ReminderTypeMedication,
		Title:              "Take pill",
		Message:            "Metformin 500mg",
		ReminderTime:       at,
		RepeatInterval:     repeat,
		IsActive:           true,
		NotificationMethod: models.MethodEmail,
	}
}
