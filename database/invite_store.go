package database

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/models"
)

// InviteLog records invitations in the invitations table. Delivery of the
// actual email belongs to the mail service that consumes this table.
type InviteLog struct {
	db *gorm.DB
}

func NewInviteLog(db *gorm.DB) *InviteLog {
	return &InviteLog{db: db}
}

func (l *InviteLog) SendInvitations(ctx context.Context, room *models.Room, senderID string, emails []string) error {
	invites := make([]models.Invitation, 0, len(emails))
	for _, email := range emails {
		invites = append(invites, models.Invitation{
			RoomID:   room.ID,
			SenderID: senderID,
			Email:    email,
			Status:   "sent",
		})
	}
	if err := l.db.WithContext(ctx).Create(&invites).Error; err != nil {
		return err
	}

	logger.Info("invitations recorded", zap.String("roomId", room.ID), zap.Int("count", len(invites)))
	return nil
}

// Invitations returns the invitations recorded for roomID, oldest first.
func (l *InviteLog) Invitations(ctx context.Context, roomID string) ([]models.Invitation, error) {
	var invites []models.Invitation
	err := l.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id ASC").Find(&invites).Error
	return invites, err
}
