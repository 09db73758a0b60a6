package notifications

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFileStore(t *testing.T, capacity int) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data", "notifications.json"), capacity, discardLogger())
	require.NoError(t, err)
	return s
}

func TestFileStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, capacity int) Store {
		return newFileStore(t, capacity)
	})
}

func TestFileStore_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, 2)

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Append(ctx, notificationAt(i)))
	}

	data, err := os.ReadFile(s.path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	for _, key := range []string{"id", "type", "title", "body", "data", "timestamp", "read"} {
		assert.Contains(t, raw[0], key)
	}
	assert.Equal(t, "Reminder 2", raw[0]["title"])
	assert.Equal(t, "Reminder 3", raw[1]["title"])
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notifications.json")

	first, err := NewFileStore(path, 10, discardLogger())
	require.NoError(t, err)
	n := notificationAt(1)
	require.NoError(t, first.Append(ctx, n))
	require.NoError(t, first.Append(ctx, notificationAt(2)))
	ok, err := first.MarkRead(ctx, n.ID)
	require.NoError(t, err)
	require.True(t, ok)

	second, err := NewFileStore(path, 10, discardLogger())
	require.NoError(t, err)
	unread, err := second.ListUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Reminder 2"}, titles(unread))
}

func TestFileStore_CorruptFileMovedAside(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "notifications.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewFileStore(path, 10, discardLogger())
	require.NoError(t, err)

	unread, err := s.ListUnread(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)

	aside, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, aside, 1)
	kept, err := os.ReadFile(aside[0])
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(kept))

	require.NoError(t, s.Append(ctx, notificationAt(1)))
	unread, err = s.ListUnread(ctx)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestFileStore_ReadErrorFailsWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notifications.json")
	// a directory at the log path makes every read fail with EISDIR
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0o644))

	s, err := NewFileStore(path, 10, discardLogger())
	require.NoError(t, err)

	assert.Error(t, s.Append(ctx, notificationAt(1)))
	_, err = s.MarkRead(ctx, "any")
	assert.Error(t, err)
	_, err = s.ListUnread(ctx)
	assert.Error(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "the unreadable log is left in place")
	_, err = os.Stat(filepath.Join(path, "keep"))
	assert.NoError(t, err)
}

func TestFileStore_MissingFile(t *testing.T) {
	s := newFileStore(t, 10)

	unread, err := s.ListUnread(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unread)

	ok, err := s.MarkRead(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = os.Stat(s.path)
	assert.True(t, os.IsNotExist(err), "a miss must not create the file")
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "notifications.json"), 10, discardLogger())
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Append(context.Background(), notificationAt(i)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "notifications.json", entries[0].Name())
}

func TestFromSnapshot(t *testing.T) {
	snap := models.ReminderSnapshot{ID: "12", Title: "Blood pressure", Message: "Measure now", ReminderType: models.ReminderTypeHealthCheck}

	a := FromSnapshot(snap, base)
	b := FromSnapshot(snap, base)

	assert.Equal(t, models.NotificationTypeReminder, a.Type)
	assert.Equal(t, "Blood pressure", a.Title)
	assert.Equal(t, "Measure now", a.Body)
	assert.Equal(t, snap, a.Data)
	assert.Equal(t, base, a.Timestamp)
	assert.False(t, a.Read)
	assert.NotEqual(t, a.ID, b.ID, "same reminder and second still yields distinct ids")
}
