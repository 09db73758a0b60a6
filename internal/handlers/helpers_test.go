package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/middleware"
	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/reminders"
	"github.com/anonto42/health-tracker/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestEcho returns an echo instance whose /api/v1 group authenticates
// every request as userID (0 leaves the request anonymous).
func newTestEcho(userID uint) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	g := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != 0 {
				c.Set(middleware.ContextKeyUser, &models.JwtCustomClaims{UserID: userID})
			}
			return next(c)
		}
	})
	return e, g
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type fakeReminderRepo struct {
	mu        sync.Mutex
	nextID    uint
	reminders map[uint]models.Reminder
	lastList  models.ReminderFilter
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{nextID: 1, reminders: map[uint]models.Reminder{}}
}

func (f *fakeReminderRepo) CreateReminder(_ context.Context, r *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID
	f.nextID++
	f.reminders[r.ID] = *r
	return nil
}

func (f *fakeReminderRepo) GetReminderByID(_ context.Context, id uint) (*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeReminderRepo) GetReminderForUser(ctx context.Context, userID, id uint) (*models.Reminder, error) {
	r, err := f.GetReminderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeReminderRepo) ListReminders(_ context.Context, userID uint, filter models.ReminderFilter) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = filter
	var out []models.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) ListActiveAfter(context.Context, time.Time) ([]models.Reminder, error) {
	return nil, nil
}

func (f *fakeReminderRepo) ListActive(context.Context) ([]models.Reminder, error) {
	return nil, nil
}

func (f *fakeReminderRepo) UpdateReminder(_ context.Context, r *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[r.ID] = *r
	return nil
}

func (f *fakeReminderRepo) UpdateReminderTime(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.reminders[id]
	r.ReminderTime = at
	f.reminders[id] = r
	return nil
}

func (f *fakeReminderRepo) DeleteReminder(_ context.Context, userID, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.reminders, id)
	return nil
}

// fakeScheduler records scheduler calls and runs persist callbacks inline.
type fakeScheduler struct {
	// beforePersist runs inside Update ahead of persist, where a firing
	// holding the same lock would have finished.
	beforePersist func()

	scheduled []uint
	cancelled []uint
	updated   []uint
	removed   []uint
}

func (f *fakeScheduler) Schedule(_ context.Context, id uint) bool {
	f.scheduled = append(f.scheduled, id)
	return true
}

func (f *fakeScheduler) Cancel(id uint) bool {
	f.cancelled = append(f.cancelled, id)
	return true
}

func (f *fakeScheduler) Update(ctx context.Context, id uint, persist func(ctx context.Context) error) (bool, error) {
	f.updated = append(f.updated, id)
	if f.beforePersist != nil {
		f.beforePersist()
	}
	return true, persist(ctx)
}

func (f *fakeScheduler) Remove(ctx context.Context, id uint, persist func(ctx context.Context) error) error {
	f.removed = append(f.removed, id)
	return persist(ctx)
}

type fakeNotifier struct {
	notifications []models.Notification
	read          map[string]bool
	testOK        bool
	testUser      uint
}

func (f *fakeNotifier) ListPendingNotifications(context.Context) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if !f.read[n.ID] {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifier) MarkNotificationRead(_ context.Context, id string) (bool, error) {
	for _, n := range f.notifications {
		if n.ID == id {
			f.read[id] = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifier) SendTestNotification(_ context.Context, userID uint) bool {
	f.testUser = userID
	return f.testOK
}

func (f *fakeNotifier) Status() reminders.Status {
	return reminders.Status{
		Channels:     map[string]bool{"email": true, "push": false},
		EmailEnabled: true,
		StoreBackend: "file",
	}
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
	tokens map[uint]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[uint]models.User{}, tokens: map[uint]string{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) UpdateDeviceToken(_ context.Context, id uint, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[id] = token
	return nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}
