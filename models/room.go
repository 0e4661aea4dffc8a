package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreatedLayout is the ISO-8601 form used for Room.Created on the wire and in
// persisted records.
const CreatedLayout = "2006-01-02T15:04:05.000Z07:00"

type VideoQuality string

const (
	VideoQualityLow    VideoQuality = "low"
	VideoQualityMedium VideoQuality = "medium"
	VideoQualityHigh   VideoQuality = "high"
)

func (q VideoQuality) Valid() bool {
	switch q {
	case VideoQualityLow, VideoQualityMedium, VideoQualityHigh:
		return true
	}
	return false
}

type Settings struct {
	MaxParticipants  uint         `json:"maxParticipants"`
	IsPrivate        bool         `json:"isPrivate"`
	AllowScreenShare bool         `json:"allowScreenShare"`
	AllowChat        bool         `json:"allowChat"`
	VideoQuality     VideoQuality `json:"videoQuality"`
}

// DefaultSettings returns the settings every room starts from.
func DefaultSettings() Settings {
	return Settings{
		MaxParticipants:  10,
		IsPrivate:        false,
		AllowScreenShare: true,
		AllowChat:        true,
		VideoQuality:     VideoQualityMedium,
	}
}

func (s Settings) Validate() error {
	if s.MaxParticipants == 0 {
		return fmt.Errorf("maxParticipants must be at least 1")
	}
	if !s.VideoQuality.Valid() {
		return fmt.Errorf("videoQuality %q is not one of low, medium, high", s.VideoQuality)
	}
	return nil
}

// SettingsPatch is a partial settings override. Nil fields are left as is.
type SettingsPatch struct {
	MaxParticipants  *uint         `json:"maxParticipants,omitempty"`
	IsPrivate        *bool         `json:"isPrivate,omitempty"`
	AllowScreenShare *bool         `json:"allowScreenShare,omitempty"`
	AllowChat        *bool         `json:"allowChat,omitempty"`
	VideoQuality     *VideoQuality `json:"videoQuality,omitempty"`
}

// Apply shallow-merges p onto s.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.MaxParticipants != nil {
		s.MaxParticipants = *p.MaxParticipants
	}
	if p.IsPrivate != nil {
		s.IsPrivate = *p.IsPrivate
	}
	if p.AllowScreenShare != nil {
		s.AllowScreenShare = *p.AllowScreenShare
	}
	if p.AllowChat != nil {
		s.AllowChat = *p.AllowChat
	}
	if p.VideoQuality != nil {
		s.VideoQuality = *p.VideoQuality
	}
	return s
}

type Metadata struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	HostID      string     `json:"hostId,omitempty"`
	Duration    *int       `json:"duration,omitempty"` // minutes
	Scheduled   *time.Time `json:"scheduled,omitempty"`
}

// IsHost reports whether userID is the room's host. A room without a host
// has no host-only authority.
func (m Metadata) IsHost(userID string) bool {
	return m.HostID != "" && m.HostID == userID
}

// Room is a snapshot of a room's state. Participants are in join order.
type Room struct {
	ID           string    `json:"id"`
	Settings     Settings  `json:"settings"`
	Metadata     Metadata  `json:"metadata"`
	Participants []string  `json:"participants"`
	Created      time.Time `json:"created"`
}

// Clone returns a deep copy safe to hand out of the store.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Participants = append([]string(nil), r.Participants...)
	if r.Metadata.Duration != nil {
		d := *r.Metadata.Duration
		cp.Metadata.Duration = &d
	}
	if r.Metadata.Scheduled != nil {
		s := *r.Metadata.Scheduled
		cp.Metadata.Scheduled = &s
	}
	return &cp
}

func (r *Room) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// RoomRecord is the durable shape of a room.
type RoomRecord struct {
	ID           string   `json:"id"`
	Participants []string `json:"participants"`
	Created      string   `json:"created"`
	Settings     Settings `json:"settings"`
	Metadata     Metadata `json:"metadata"`
}

func (r *Room) Record() RoomRecord {
	participants := r.Participants
	if participants == nil {
		participants = []string{}
	}
	return RoomRecord{
		ID:           r.ID,
		Participants: participants,
		Created:      r.Created.UTC().Format(CreatedLayout),
		Settings:     r.Settings,
		Metadata:     r.Metadata,
	}
}

// Room validates the record and converts it back into a Room. Duplicate
// participants are collapsed keeping the first occurrence.
func (rec RoomRecord) Room() (*Room, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("record has no id")
	}
	created, err := time.Parse(time.RFC3339Nano, rec.Created)
	if err != nil {
		return nil, fmt.Errorf("room %s: invalid created timestamp: %w", rec.ID, err)
	}
	if err := rec.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("room %s: %w", rec.ID, err)
	}

	seen := make(map[string]struct{}, len(rec.Participants))
	participants := make([]string, 0, len(rec.Participants))
	for _, p := range rec.Participants {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		participants = append(participants, p)
	}

	return &Room{
		ID:           rec.ID,
		Settings:     rec.Settings,
		Metadata:     rec.Metadata,
		Participants: participants,
		Created:      created.UTC(),
	}, nil
}

// DecodeRoomRecord parses one persisted JSON document.
func DecodeRoomRecord(doc []byte) (*Room, error) {
	var rec RoomRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("malformed room record: %w", err)
	}
	return rec.Room()
}

// RoomRow is the relational form of a RoomRecord. Deleted rows are kept as
// soft-delete tombstones so their ids are never handed out again.
type RoomRow struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Participants datatypes.JSON `json:"participants"`
	Created      string         `gorm:"size:40;not null" json:"created"`
	Settings     datatypes.JSON `json:"settings"`
	Metadata     datatypes.JSON `json:"metadata"`
	HostID       string         `gorm:"size:255;index" json:"host_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RoomRow) TableName() string {
	return "rooms"
}

func NewRoomRow(rec RoomRecord) (RoomRow, error) {
	participants, err := json.Marshal(rec.Participants)
	if err != nil {
		return RoomRow{}, err
	}
	settings, err := json.Marshal(rec.Settings)
	if err != nil {
		return RoomRow{}, err
	}
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return RoomRow{}, err
	}
	return RoomRow{
		ID:           rec.ID,
		Participants: datatypes.JSON(participants),
		Created:      rec.Created,
		Settings:     datatypes.JSON(settings),
		Metadata:     datatypes.JSON(metadata),
		HostID:       rec.Metadata.HostID,
	}, nil
}

// Document reassembles the row into the persisted JSON document.
func (row RoomRow) Document() ([]byte, error) {
	return json.Marshal(struct {
		ID           string          `json:"id"`
		Participants json.RawMessage `json:"participants"`
		Created      string          `json:"created"`
		Settings     json.RawMessage `json:"settings"`
		Metadata     json.RawMessage `json:"metadata"`
	}{
		ID:           row.ID,
		Participants: rawOrNull(row.Participants),
		Created:      row.Created,
		Settings:     rawOrNull(row.Settings),
		Metadata:     rawOrNull(row.Metadata),
	})
}

func rawOrNull(b datatypes.JSON) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}
