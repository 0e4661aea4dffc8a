package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"go.uber.org/zap"

	"github.com/CUknot/videocall_backend/apperrors"
	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/middleware"
	"github.com/CUknot/videocall_backend/models"
)

// RoomStore is the part of rooms.Store the gateway uses.
type RoomStore interface {
	CreateRoom(ctx context.Context, settings *models.SettingsPatch, metadata models.Metadata) (*models.Room, error)
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	ListRooms(ctx context.Context) []*models.Room
	UpdateSettings(ctx context.Context, roomID string, patch models.SettingsPatch) (*models.Room, error)
}

// RoomEnder deletes a room and notifies its live connections.
type RoomEnder interface {
	EndRoom(ctx context.Context, roomID string) error
}

type RoomController struct {
	store      RoomStore
	ender      RoomEnder
	inviter    Inviter
	joinURL    func(roomID string) string
	iceServers []webrtc.ICEServer
}

func NewRoomController(store RoomStore, ender RoomEnder, inviter Inviter, joinURL func(string) string, iceServers []webrtc.ICEServer) *RoomController {
	if inviter == nil {
		inviter = LogInviter{}
	}
	if iceServers == nil {
		iceServers = []webrtc.ICEServer{}
	}
	return &RoomController{
		store:      store,
		ender:      ender,
		inviter:    inviter,
		joinURL:    joinURL,
		iceServers: iceServers,
	}
}

type CreateRoomInput struct {
	Name        string                `json:"name" binding:"max=255" example:"Weekly sync"`
	Description string                `json:"description" binding:"max=2000" example:"Team status call"`
	Settings    *models.SettingsPatch `json:"settings"`
	Scheduled   *time.Time            `json:"scheduled" example:"2026-11-02T15:00:00Z"`
	Duration    *int                  `json:"duration" binding:"omitempty,min=1" example:"30"`
}

type CreateRoomResponse struct {
	RoomID   string          `json:"roomId"`
	Settings models.Settings `json:"settings"`
	Metadata models.Metadata `json:"metadata"`
	JoinURL  string          `json:"joinUrl"`
}

type RoomDetails struct {
	ID           string          `json:"id"`
	Settings     models.Settings `json:"settings"`
	Metadata     models.Metadata `json:"metadata"`
	Participants []string        `json:"participants"`
	Created      string          `json:"created"`
}

type RoomSummary struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Participants int        `json:"participants"`
	Created      string     `json:"created"`
	Scheduled    *time.Time `json:"scheduled,omitempty"`
	IsHost       bool       `json:"isHost"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func roomDetails(room *models.Room) RoomDetails {
	return RoomDetails{
		ID:           room.ID,
		Settings:     room.Settings,
		Metadata:     room.Metadata,
		Participants: room.Participants,
		Created:      room.Created.UTC().Format(models.CreatedLayout),
	}
}

// CreateRoom godoc
// @Summary Create a video call room
// @Description Creates a room hosted by the authenticated user. Omitted settings take their defaults.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param room body CreateRoomInput false "Room Creation"
// @Success 201 {object} CreateRoomResponse "Room created successfully"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Server error"
// @Router /api/video-calls/rooms [post]
func (rc *RoomController) CreateRoom(c *gin.Context) {
	userID := middleware.UserID(c)

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, apperrors.New(apperrors.ErrCodeInvalidInput, err.Error()))
		return
	}

	room, err := rc.store.CreateRoom(c.Request.Context(), input.Settings, models.Metadata{
		Name:        input.Name,
		Description: input.Description,
		HostID:      userID,
		Duration:    input.Duration,
		Scheduled:   input.Scheduled,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateRoomResponse{
		RoomID:   room.ID,
		Settings: room.Settings,
		Metadata: room.Metadata,
		JoinURL:  rc.joinURL(room.ID),
	})
}

// GetRooms godoc
// @Summary List rooms hosted by the authenticated user
// @Description Returns the live rooms whose host is the caller, oldest first
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of rooms"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /api/video-calls/rooms [get]
func (rc *RoomController) GetRooms(c *gin.Context) {
	userID := middleware.UserID(c)

	summaries := []RoomSummary{}
	for _, room := range rc.store.ListRooms(c.Request.Context()) {
		if !room.Metadata.IsHost(userID) {
			continue
		}
		summaries = append(summaries, RoomSummary{
			ID:           room.ID,
			Name:         room.Metadata.Name,
			Participants: len(room.Participants),
			Created:      room.Created.UTC().Format(models.CreatedLayout),
			Scheduled:    room.Metadata.Scheduled,
			IsHost:       true,
		})
	}

	c.JSON(http.StatusOK, gin.H{"rooms": summaries})
}

// GetRoom godoc
// @Summary Get a room
// @Description Returns settings, metadata and current participants of a room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Success 200 {object} RoomDetails "Room details"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Router /api/video-calls/rooms/{roomId} [get]
func (rc *RoomController) GetRoom(c *gin.Context) {
	room, err := rc.store.GetRoom(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomDetails(room))
}

// UpdateSettings godoc
// @Summary Update room settings
// @Description Merges the given fields into the room settings. Only the host may update.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Param settings body models.SettingsPatch true "Settings to change"
// @Success 200 {object} RoomDetails "Updated room"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the host"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Failure 500 {object} ErrorResponse "Server error"
// @Router /api/video-calls/rooms/{roomId}/settings [patch]
func (rc *RoomController) UpdateSettings(c *gin.Context) {
	room, ok := rc.hostedRoom(c)
	if !ok {
		return
	}

	var patch models.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, apperrors.New(apperrors.ErrCodeInvalidInput, err.Error()))
		return
	}

	updated, err := rc.store.UpdateSettings(c.Request.Context(), room.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("room settings updated", zap.String("roomId", room.ID), zap.String("hostId", room.Metadata.HostID))
	c.JSON(http.StatusOK, roomDetails(updated))
}

// EndRoom godoc
// @Summary End a room
// @Description Deletes the room and disconnects it from every signaling connection. Only the host may end it.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Success 200 {object} MessageResponse "Room ended"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the host"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Failure 500 {object} ErrorResponse "Server error"
// @Router /api/video-calls/rooms/{roomId} [delete]
func (rc *RoomController) EndRoom(c *gin.Context) {
	room, ok := rc.hostedRoom(c)
	if !ok {
		return
	}

	if err := rc.ender.EndRoom(c.Request.Context(), room.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Room ended successfully"})
}

// GetICEServers godoc
// @Summary STUN/TURN servers for clients
// @Description Returns the ICE servers clients should configure on their peer connections
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "ICE servers"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /api/video-calls/ice-servers [get]
func (rc *RoomController) GetICEServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": rc.iceServers})
}

// hostedRoom loads the room named in the path and checks the caller hosts
// it. On failure the response has been written.
func (rc *RoomController) hostedRoom(c *gin.Context) (*models.Room, bool) {
	room, err := rc.store.GetRoom(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !room.Metadata.IsHost(middleware.UserID(c)) {
		respondError(c, apperrors.New(apperrors.ErrCodeForbidden, "Only the host can manage this room"))
		return nil, false
	}
	return room, true
}
