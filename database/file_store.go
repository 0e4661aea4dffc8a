package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/models"
	"github.com/CUknot/videocall_backend/rooms"
)

// FileStore keeps every room in a single JSON array on disk and rewrites the
// whole file on each change. Writes go through a temp file and rename.
type FileStore struct {
	mu   sync.Mutex
	path string
	docs map[string]json.RawMessage
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, docs: make(map[string]json.RawMessage)}
}

func (s *FileStore) LoadAll(ctx context.Context) (*rooms.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &rooms.Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	snap := &rooms.Snapshot{Documents: make([][]byte, 0, len(entries))}
	for i, raw := range entries {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || head.ID == "" {
			logger.Warn("skipping room entry without id", zap.String("file", s.path), zap.Int("index", i))
			continue
		}
		s.docs[head.ID] = raw
		snap.Documents = append(snap.Documents, raw)
	}
	return snap, nil
}

func (s *FileStore) SaveRoom(ctx context.Context, rec models.RoomRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.docs[rec.ID]
	s.docs[rec.ID] = doc
	if err := s.flush(); err != nil {
		if had {
			s.docs[rec.ID] = prev
		} else {
			delete(s.docs, rec.ID)
		}
		return err
	}
	return nil
}

func (s *FileStore) DeleteRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.docs[roomID]
	if !had {
		return nil
	}
	delete(s.docs, roomID)
	if err := s.flush(); err != nil {
		s.docs[roomID] = prev
		return err
	}
	return nil
}

// flush writes all documents sorted by id. Caller holds s.mu.
func (s *FileStore) flush() error {
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, s.docs[id])
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".rooms-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
