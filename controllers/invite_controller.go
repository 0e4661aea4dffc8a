package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CUknot/videocall_backend/apperrors"
	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/middleware"
	"github.com/CUknot/videocall_backend/models"
)

// Inviter dispatches room invitations and reports what was sent.
type Inviter interface {
	SendInvitations(ctx context.Context, room *models.Room, senderID string, emails []string) error
	Invitations(ctx context.Context, roomID string) ([]models.Invitation, error)
}

// LogInviter only logs invitations. It is used when no relational store is
// configured.
type LogInviter struct{}

func (LogInviter) SendInvitations(ctx context.Context, room *models.Room, senderID string, emails []string) error {
	logger.Info("invitations requested",
		zap.String("roomId", room.ID), zap.String("senderId", senderID), zap.Strings("emails", emails))
	return nil
}

func (LogInviter) Invitations(ctx context.Context, roomID string) ([]models.Invitation, error) {
	return []models.Invitation{}, nil
}

type InviteInput struct {
	Emails []string `json:"emails" binding:"required,min=1,max=50,dive,email" example:"guest@example.com"`
}

// InviteToRoom godoc
// @Summary Invite people to a room
// @Description Sends invitations by email. Only the host may invite.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Param invite body InviteInput true "Invitees"
// @Success 200 {object} MessageResponse "Invitations sent"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the host"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Failure 500 {object} ErrorResponse "Server error"
// @Router /api/video-calls/rooms/{roomId}/invite [post]
func (rc *RoomController) InviteToRoom(c *gin.Context) {
	room, ok := rc.hostedRoom(c)
	if !ok {
		return
	}

	var input InviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.New(apperrors.ErrCodeInvalidInput, err.Error()))
		return
	}

	if err := rc.inviter.SendInvitations(c.Request.Context(), room, middleware.UserID(c), input.Emails); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrCodeInternal, "Failed to send invitations", err))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Invitations sent successfully"})
}

// GetInvitations godoc
// @Summary List invitations sent for a room
// @Description Returns the invitations recorded for the room. Only the host may list them.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Success 200 {object} map[string]interface{} "List of invitations"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the host"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Failure 500 {object} ErrorResponse "Server error"
// @Router /api/video-calls/rooms/{roomId}/invites [get]
func (rc *RoomController) GetInvitations(c *gin.Context) {
	room, ok := rc.hostedRoom(c)
	if !ok {
		return
	}

	invites, err := rc.inviter.Invitations(c.Request.Context(), room.ID)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrCodeInternal, "Failed to fetch invitations", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invites})
}
