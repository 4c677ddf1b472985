package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"marketbot/internal/config"
	"marketbot/internal/transport"
	"marketbot/pkg/logx"
)

// fileStore serializes the membership as a JSON list of ids in one local
// file. Every mutation reads, modifies and rewrites the whole file through a
// tmp-file + rename so readers never observe a partial write. Intended for
// single-process use; it does not coordinate concurrent writers across
// processes.
type fileStore struct {
	path string
	log  logx.Logger

	mu sync.Mutex
}

var _ Store = (*fileStore)(nil)

func openFile(cfg config.SubscribersConfig, log logx.Logger) (Store, error) {
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileStore{path: path, log: log}, nil
}

func (s *fileStore) Add(ctx context.Context, id transport.Recipient) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadLocked()
	if err != nil {
		return err
	}
	if _, ok := set[id]; ok {
		return nil
	}
	set[id] = struct{}{}
	return s.saveLocked(set)
}

func (s *fileStore) Remove(ctx context.Context, id transport.Recipient) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadLocked()
	if err != nil {
		return err
	}
	if _, ok := set[id]; !ok {
		return nil
	}
	delete(set, id)
	return s.saveLocked(set)
}

func (s *fileStore) ListAll(ctx context.Context) ([]transport.Recipient, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	out := make([]transport.Recipient, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	// Stable order keeps the file diffable and tests simple; callers must not
	// rely on it.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) loadLocked() (map[transport.Recipient]struct{}, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[transport.Recipient]struct{}{}, nil
		}
		return nil, unavailable("read "+s.path, err)
	}
	var ids []transport.Recipient
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, unavailable("decode "+s.path, err)
	}
	set := make(map[transport.Recipient]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *fileStore) saveLocked(set map[transport.Recipient]struct{}) error {
	ids := make([]transport.Recipient, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return unavailable("write "+tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return unavailable("rename "+tmp, err)
	}
	s.log.Debug("subscribers file saved", logx.Int("count", len(ids)))
	return nil
}
