package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedpulse/internal/logger"
)

// FileStore keeps subscriptions in memory and mirrors them to a JSON
// file. With an empty path it is purely in-memory (tests, throwaway
// runs). It is the default when no DATABASE_URL is configured.
type FileStore struct {
	path  string
	mu    sync.RWMutex
	feeds []Feed
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted subscription list. A missing file starts an
// empty store.
func (s *FileStore) Load() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	var feeds []Feed
	if err := json.Unmarshal(data, &feeds); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.feeds = feeds
	logger.Info("loaded feed subscriptions", "count", len(feeds), "path", s.path)
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Feed, len(s.feeds))
	copy(out, s.feeds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FileStore) Create(ctx context.Context, url, title, description string) (Feed, error) {
	if url == "" {
		return Feed{}, fmt.Errorf("feed url is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.feeds {
		if f.URL == url {
			return Feed{}, fmt.Errorf("feed already exists: %s", url)
		}
	}

	feed := Feed{
		ID:          uuid.NewString(),
		URL:         url,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	s.feeds = append(s.feeds, feed)

	if err := s.save(); err != nil {
		// The in-memory copy stays valid; persistence is best effort.
		logger.Warn("could not persist feed store", "err", err)
	}
	return feed, nil
}

func (s *FileStore) save() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.feeds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
