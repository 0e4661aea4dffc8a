package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsPatchApply(t *testing.T) {
	max := uint(2)
	quality := VideoQualityHigh
	got := SettingsPatch{MaxParticipants: &max, VideoQuality: &quality}.Apply(DefaultSettings())

	assert.Equal(t, uint(2), got.MaxParticipants)
	assert.Equal(t, VideoQualityHigh, got.VideoQuality)
	assert.True(t, got.AllowChat)
	assert.True(t, got.AllowScreenShare)
	assert.False(t, got.IsPrivate)
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.MaxParticipants = 0
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.VideoQuality = "ultra"
	assert.Error(t, s.Validate())
}

func TestRecordRoundTrip(t *testing.T) {
	duration := 45
	scheduled := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	room := &Room{
		ID:           "r1",
		Settings:     DefaultSettings(),
		Metadata:     Metadata{Name: "standup", HostID: "host", Duration: &duration, Scheduled: &scheduled},
		Participants: []string{"a", "b"},
		Created:      time.Date(2026, 2, 1, 9, 30, 15, 123000000, time.UTC),
	}

	doc, err := json.Marshal(room.Record())
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"created":"2026-02-01T09:30:15.123Z"`)
	assert.Contains(t, string(doc), `"participants":["a","b"]`)

	back, err := DecodeRoomRecord(doc)
	require.NoError(t, err)
	assert.Equal(t, room, back)
}

func TestDecodeRoomRecordRejectsMalformed(t *testing.T) {
	cases := []string{
		`{"id":`,
		`{"id":"","created":"2026-02-01T09:30:15.123Z","settings":{"maxParticipants":1,"videoQuality":"low"}}`,
		`{"id":"x","created":"yesterday","settings":{"maxParticipants":1,"videoQuality":"low"}}`,
		`{"id":"x","created":"2026-02-01T09:30:15.123Z","settings":{"maxParticipants":0,"videoQuality":"low"}}`,
	}
	for _, doc := range cases {
		_, err := DecodeRoomRecord([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestRoomRowDocument(t *testing.T) {
	room := &Room{ID: "r1", Settings: DefaultSettings(), Metadata: Metadata{HostID: "h"}, Created: time.Now().UTC().Truncate(time.Millisecond)}
	row, err := NewRoomRow(room.Record())
	require.NoError(t, err)
	assert.Equal(t, "h", row.HostID)

	doc, err := row.Document()
	require.NoError(t, err)
	back, err := DecodeRoomRecord(doc)
	require.NoError(t, err)
	assert.Equal(t, room.ID, back.ID)
	assert.Empty(t, back.Participants)
}

func TestIsHost(t *testing.T) {
	assert.True(t, Metadata{HostID: "h"}.IsHost("h"))
	assert.False(t, Metadata{HostID: "h"}.IsHost("x"))
	assert.False(t, Metadata{}.IsHost(""))
}
