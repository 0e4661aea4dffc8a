package database

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/models"
	"github.com/CUknot/videocall_backend/rooms"
)

// GormStore persists rooms as rows of the rooms table. Deletion is a soft
// delete so the row stays behind as a tombstone for id uniqueness.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LoadAll(ctx context.Context) (*rooms.Snapshot, error) {
	var rows []models.RoomRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	snap := &rooms.Snapshot{Documents: make([][]byte, 0, len(rows))}
	for _, row := range rows {
		doc, err := row.Document()
		if err != nil {
			logger.Warn("skipping unreadable room row", zap.String("roomId", row.ID), zap.Error(err))
			continue
		}
		snap.Documents = append(snap.Documents, doc)
	}

	if err := s.db.WithContext(ctx).Unscoped().Model(&models.RoomRow{}).
		Where("deleted_at IS NOT NULL").
		Pluck("id", &snap.Retired).Error; err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *GormStore) SaveRoom(ctx context.Context, rec models.RoomRecord) error {
	row, err := models.NewRoomRow(rec)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"participants", "settings", "metadata", "host_id", "updated_at"}),
	}).Create(&row).Error
}

func (s *GormStore) DeleteRoom(ctx context.Context, roomID string) error {
	result := s.db.WithContext(ctx).Delete(&models.RoomRow{}, "id = ?", roomID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.Debug("room row already absent", zap.String("roomId", roomID))
	}
	return nil
}
