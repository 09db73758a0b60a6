package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
)

// FileStore keeps notifications as a JSON array in a single file, newest
// last. Every read-modify-write holds mu, and the file is replaced with a
// rename so a crash never leaves a half-written array behind.
type FileStore struct {
	path     string
	capacity int
	log      *slog.Logger

	mu sync.Mutex
}

func NewFileStore(path string, capacity int, log *slog.Logger) (*FileStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create notification dir: %w", err)
	}
	return &FileStore{path: path, capacity: capacity, log: log}, nil
}

func (s *FileStore) Append(_ context.Context, n *models.Notification) error {
	prepare(n)

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	all = append(all, *n)
	if over := len(all) - s.capacity; over > 0 {
		all = all[over:]
	}
	return s.save(all)
}

func (s *FileStore) ListUnread(_ context.Context) ([]models.Notification, error) {
	s.mu.Lock()
	all, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	unread := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (s *FileStore) MarkRead(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return false, err
	}
	for i := range all {
		if all[i].ID == id {
			all[i].Read = true
			return true, s.save(all)
		}
	}
	return false, nil
}

// load reads the whole log. A missing file is an empty log. A file that does
// not decode is moved aside to <path>.corrupt-<unix> and the log starts
// empty. Any other read error is returned so the caller never overwrites
// records it could not see.
func (s *FileStore) load() ([]models.Notification, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read notification file: %w", err)
	}

	var all []models.Notification
	if err := json.Unmarshal(data, &all); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if renameErr := os.Rename(s.path, aside); renameErr != nil {
			return nil, fmt.Errorf("move corrupt notification file aside: %w", renameErr)
		}
		s.log.Warn("notification file is corrupt, moved aside", "path", s.path, "moved_to", aside, "error", err)
		return nil, nil
	}
	return all, nil
}

func (s *FileStore) save(all []models.Notification) error {
	if all == nil {
		all = []models.Notification{}
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".notifications-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write notifications: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync notifications: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace notification file: %w", err)
	}
	return nil
}
