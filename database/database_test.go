package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CUknot/videocall_backend/config"
	"github.com/CUknot/videocall_backend/models"
	"github.com/CUknot/videocall_backend/rooms"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Persistence: config.PersistenceSQLite,
		Database:    config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "test.db")},
	}
}

func openSQLite(t *testing.T) *Backend {
	t.Helper()
	backend, err := Open(context.Background(), sqliteConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func sampleRecord(id string, participants ...string) models.RoomRecord {
	room := &models.Room{
		ID:           id,
		Settings:     models.DefaultSettings(),
		Metadata:     models.Metadata{Name: "room " + id, HostID: "host"},
		Participants: participants,
		Created:      time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC),
	}
	return room.Record()
}

// persistenceContract runs the same checks against every adapter.
func persistenceContract(t *testing.T, p rooms.Persistence) {
	ctx := context.Background()

	require.NoError(t, p.SaveRoom(ctx, sampleRecord("r1", "a")))
	require.NoError(t, p.SaveRoom(ctx, sampleRecord("r2")))
	require.NoError(t, p.SaveRoom(ctx, sampleRecord("r1", "a", "b")))
	require.NoError(t, p.DeleteRoom(ctx, "r2"))
	require.NoError(t, p.DeleteRoom(ctx, "never-existed"))

	snap, err := p.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Documents, 1)

	room, err := models.DecodeRoomRecord(snap.Documents[0])
	require.NoError(t, err)
	assert.Equal(t, "r1", room.ID)
	assert.Equal(t, []string{"a", "b"}, room.Participants)
	assert.Equal(t, "host", room.Metadata.HostID)
	assert.True(t, room.Created.Equal(time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)))
}

func TestGormStoreContract(t *testing.T) {
	backend := openSQLite(t)
	persistenceContract(t, backend.Rooms)

	snap, err := backend.Rooms.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Contains(t, snap.Retired, "r2")
}

func TestGormStoreSkipsUnreadableRows(t *testing.T) {
	backend := openSQLite(t)
	store := backend.Rooms.(*GormStore)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, sampleRecord("ok")))
	require.NoError(t, store.db.Create(&models.RoomRow{ID: "broken", Created: "x", Settings: []byte("{not json")}).Error)

	snap, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Documents, 1)
}

func TestFileStoreContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "rooms.json")
	persistenceContract(t, NewFileStore(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"participants": [`)
}

func TestFileStoreReloadsFromDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rooms.json")

	first := NewFileStore(path)
	require.NoError(t, first.SaveRoom(ctx, sampleRecord("r1", "a")))

	second := NewFileStore(path)
	snap, err := second.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Documents, 1)

	// The reloaded store keeps existing rooms when it rewrites the file.
	require.NoError(t, second.SaveRoom(ctx, sampleRecord("r2")))
	snap, err = NewFileStore(path).LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Documents, 2)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	snap, err := NewFileStore(filepath.Join(t.TempDir(), "absent.json")).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Documents)
}

func TestFileStoreCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := NewFileStore(path).LoadAll(context.Background())
	assert.Error(t, err)
}

func TestRedisStoreContract(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := NewRedisClient(config.RedisConfig{Addr: addr, DB: 15})
	ctx := context.Background()
	require.NoError(t, client.FlushDB(ctx).Err())
	store := NewRedisStore(client)
	defer store.Close()

	persistenceContract(t, store)
	snap, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, snap.Retired, "r2")
}

func TestStoreOverGormRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := openSQLite(t)

	store := rooms.NewStore(backend.Rooms)
	room, err := store.CreateRoom(ctx, nil, models.Metadata{Name: "weekly", HostID: "host"})
	require.NoError(t, err)
	admit(t, store, room.ID, "a")
	admit(t, store, room.ID, "b")

	reloaded := rooms.NewStore(backend.Rooms)
	require.NoError(t, reloaded.Load(ctx))
	got, err := reloaded.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.Settings, got.Settings)
	assert.Equal(t, room.Metadata, got.Metadata)
	assert.True(t, room.Created.Equal(got.Created))
	assert.ElementsMatch(t, []string{"a", "b"}, got.Participants)
}

func TestInviteLog(t *testing.T) {
	ctx := context.Background()
	backend := openSQLite(t)
	require.NotNil(t, backend.Invites)

	room := &models.Room{ID: "r1"}
	require.NoError(t, backend.Invites.SendInvitations(ctx, room, "host", []string{"a@example.com", "b@example.com"}))

	invites, err := backend.Invites.Invitations(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, invites, 2)
	assert.Equal(t, "a@example.com", invites[0].Email)
	assert.Equal(t, "sent", invites[0].Status)
}

func admit(t *testing.T, s *rooms.Store, roomID, userID string) {
	t.Helper()
	_, err := s.AddParticipant(context.Background(), roomID, userID)
	require.NoError(t, err)
}
