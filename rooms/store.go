// Package rooms owns the room table: creation, settings, membership and
// deletion, with every mutation persisted before it becomes visible.
package rooms

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CUknot/videocall_backend/apperrors"
	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/metrics"
	"github.com/CUknot/videocall_backend/models"
	"github.com/CUknot/videocall_backend/utils"
)

const maxIDAttempts = 16

// Snapshot is everything a persistence backend holds: one JSON document per
// live room, plus ids of deleted rooms it still remembers.
type Snapshot struct {
	Documents [][]byte
	Retired   []string
}

// Persistence durably stores room records. Implementations must be safe for
// concurrent use; calls for different rooms may run in parallel.
type Persistence interface {
	LoadAll(ctx context.Context) (*Snapshot, error)
	SaveRoom(ctx context.Context, rec models.RoomRecord) error
	DeleteRoom(ctx context.Context, roomID string) error
}

// entry guards one room. The store-wide lock only protects the map; all
// reads and writes of a room, including its persistence, happen under the
// entry lock.
type entry struct {
	mu      sync.Mutex
	room    *models.Room
	deleted bool
}

type Store struct {
	mu      sync.RWMutex
	rooms   map[string]*entry
	retired map[string]struct{}
	// creating counts entries in rooms that are reserved but not yet saved.
	creating int

	persist Persistence
	timeout time.Duration
	metrics *metrics.Metrics
	newID   func() (string, error)
	now     func() time.Time
}

type Option func(*Store)

// WithTimeout bounds each persistence call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithIDGenerator replaces the room id source.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *Store) { s.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

func NewStore(persist Persistence, opts ...Option) *Store {
	s := &Store{
		rooms:   make(map[string]*entry),
		retired: make(map[string]struct{}),
		persist: persist,
		timeout: 5 * time.Second,
		newID:   utils.GenerateRoomID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load rebuilds the room table from persistence. Malformed records are
// skipped with a warning; only a failure to read the backend is returned.
func (s *Store) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.persist.LoadAll(ctx)
	if err != nil {
		return apperrors.Storage(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range snap.Retired {
		s.retired[id] = struct{}{}
	}
	for _, doc := range snap.Documents {
		room, err := models.DecodeRoomRecord(doc)
		if err != nil {
			logger.Warn("skipping malformed room record", zap.Error(err))
			continue
		}
		if _, dup := s.rooms[room.ID]; dup {
			logger.Warn("skipping duplicate room record", zap.String("roomId", room.ID))
			continue
		}
		s.rooms[room.ID] = &entry{room: room}
	}
	s.publishRoomsLocked()

	logger.Info("rooms loaded", zap.Int("rooms", len(s.rooms)), zap.Int("retired", len(s.retired)))
	return nil
}

// CreateRoom creates and persists a new room with defaults merged with
// settings. The room is not observable until persistence succeeds.
func (s *Store) CreateRoom(ctx context.Context, settings *models.SettingsPatch, metadata models.Metadata) (*models.Room, error) {
	merged := models.DefaultSettings()
	if settings != nil {
		merged = settings.Apply(merged)
	}
	if err := merged.Validate(); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, err.Error())
	}

	e, err := s.reserve(merged, metadata)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	err = s.save(ctx, e.room)
	s.mu.Lock()
	s.creating--
	if err != nil {
		e.deleted = true
		delete(s.rooms, e.room.ID)
	}
	s.publishRoomsLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	logger.Info("room created", zap.String("roomId", e.room.ID), zap.String("hostId", metadata.HostID))
	return e.room.Clone(), nil
}

// reserve picks an unused id and inserts a locked entry for it.
func (s *Store) reserve(settings models.Settings, metadata models.Metadata) (*entry, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Failed to generate room id", err)
		}

		s.mu.Lock()
		_, live := s.rooms[id]
		_, retired := s.retired[id]
		if live || retired {
			s.mu.Unlock()
			logger.Debug("room id collision, retrying", zap.String("roomId", id))
			continue
		}

		e := &entry{room: &models.Room{
			ID:           id,
			Settings:     settings,
			Metadata:     metadata,
			Participants: []string{},
			Created:      s.now().UTC().Truncate(time.Millisecond),
		}}
		e.mu.Lock()
		s.rooms[id] = e
		s.creating++
		s.mu.Unlock()
		return e, nil
	}
	return nil, apperrors.New(apperrors.ErrCodeInternal, "Could not allocate a unique room id")
}

// GetRoom returns a snapshot of the room.
func (s *Store) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	e, err := s.lock(roomID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	return e.room.Clone(), nil
}

// ListRooms returns snapshots of all rooms ordered by creation time.
func (s *Store) ListRooms(ctx context.Context) []*models.Room {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.rooms))
	for _, e := range s.rooms {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*models.Room, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted {
			out = append(out, e.room.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// UpdateSettings shallow-merges patch onto the room's settings.
func (s *Store) UpdateSettings(ctx context.Context, roomID string, patch models.SettingsPatch) (*models.Room, error) {
	e, err := s.lock(roomID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	next := patch.Apply(e.room.Settings)
	if err := next.Validate(); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, err.Error())
	}
	if int(next.MaxParticipants) < len(e.room.Participants) {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidInput,
			"maxParticipants %d is below the current participant count %d", next.MaxParticipants, len(e.room.Participants))
	}

	prev := e.room.Settings
	e.room.Settings = next
	if err := s.save(ctx, e.room); err != nil {
		e.room.Settings = prev
		return nil, err
	}
	return e.room.Clone(), nil
}

// IsFull reports whether a join would be refused. Unknown rooms count as full.
func (s *Store) IsFull(ctx context.Context, roomID string) bool {
	e, err := s.lock(roomID)
	if err != nil {
		return true
	}
	defer e.mu.Unlock()
	return len(e.room.Participants) >= int(e.room.Settings.MaxParticipants)
}

// AddParticipant admits userID to the room and returns the room as it stands
// after the join. The capacity check and insert are atomic per room.
// Re-adding a current member succeeds without change.
func (s *Store) AddParticipant(ctx context.Context, roomID, userID string) (*models.Room, error) {
	e, err := s.lock(roomID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if e.room.HasParticipant(userID) {
		return e.room.Clone(), nil
	}
	if len(e.room.Participants) >= int(e.room.Settings.MaxParticipants) {
		return nil, apperrors.RoomFull(roomID)
	}

	prev := e.room.Participants
	e.room.Participants = append(append(make([]string, 0, len(prev)+1), prev...), userID)
	if err := s.save(ctx, e.room); err != nil {
		e.room.Participants = prev
		return nil, err
	}
	return e.room.Clone(), nil
}

// RemoveParticipant removes userID and returns the remaining participants.
// When the last participant leaves the room is deleted and deleted is true.
// Removing from an unknown room or removing a non-member is a no-op.
func (s *Store) RemoveParticipant(ctx context.Context, roomID, userID string) (remaining []string, deleted bool, err error) {
	e, err := s.lock(roomID)
	if err != nil {
		return nil, false, nil
	}
	defer e.mu.Unlock()

	if !e.room.HasParticipant(userID) {
		return append([]string(nil), e.room.Participants...), false, nil
	}

	prev := e.room.Participants
	next := make([]string, 0, len(prev))
	for _, p := range prev {
		if p != userID {
			next = append(next, p)
		}
	}

	if len(next) == 0 {
		if err := s.remove(ctx, e); err != nil {
			return nil, false, err
		}
		logger.Info("room emptied and deleted", zap.String("roomId", roomID))
		return []string{}, true, nil
	}

	e.room.Participants = next
	if err := s.save(ctx, e.room); err != nil {
		e.room.Participants = prev
		return nil, false, err
	}
	return append([]string(nil), next...), false, nil
}

// DeleteRoom removes the room regardless of membership.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	e, err := s.lock(roomID)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	if err := s.remove(ctx, e); err != nil {
		return err
	}
	logger.Info("room deleted", zap.String("roomId", roomID))
	return nil
}

// ListParticipants returns participant ids in join order.
func (s *Store) ListParticipants(ctx context.Context, roomID string) ([]string, error) {
	e, err := s.lock(roomID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	return append([]string(nil), e.room.Participants...), nil
}

// lock returns the live entry for roomID with its lock held.
func (s *Store) lock(roomID string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.RoomNotFound(roomID)
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, apperrors.RoomNotFound(roomID)
	}
	return e, nil
}

// remove persists the deletion and then drops the entry. Caller holds e.mu.
func (s *Store) remove(ctx context.Context, e *entry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.persist.DeleteRoom(ctx, e.room.ID); err != nil {
		s.metrics.PersistError("delete")
		logger.Error("failed to persist room deletion", zap.String("roomId", e.room.ID), zap.Error(err))
		return apperrors.Storage(err)
	}
	e.deleted = true
	s.drop(e)

	s.mu.Lock()
	s.retired[e.room.ID] = struct{}{}
	s.mu.Unlock()
	return nil
}

// drop unlinks e from the table if it is still the current entry.
func (s *Store) drop(e *entry) {
	s.mu.Lock()
	if cur, ok := s.rooms[e.room.ID]; ok && cur == e {
		delete(s.rooms, e.room.ID)
	}
	s.publishRoomsLocked()
	s.mu.Unlock()
}

// publishRoomsLocked reports live rooms, leaving out ids reserved by a
// create whose save has not finished. Caller holds s.mu.
func (s *Store) publishRoomsLocked() {
	s.metrics.SetRooms(len(s.rooms) - s.creating)
}
