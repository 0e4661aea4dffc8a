package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CUknot/videocall_backend/apperrors"
	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/metrics"
	"github.com/CUknot/videocall_backend/models"
)

// RoomStore is the part of rooms.Store the hub drives.
type RoomStore interface {
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	AddParticipant(ctx context.Context, roomID, userID string) (*models.Room, error)
	RemoveParticipant(ctx context.Context, roomID, userID string) ([]string, bool, error)
	ListParticipants(ctx context.Context, roomID string) ([]string, error)
	DeleteRoom(ctx context.Context, roomID string) error
}

// Hub relays signaling messages between the connections bound to a room.
//
// Lock order: a room lock is taken before h.mu, and h.mu is never held while
// calling the store or waiting on a room lock.
type Hub struct {
	store   RoomStore
	metrics *metrics.Metrics

	mu      sync.Mutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	users   map[binding]*Client
	locks   map[string]*roomLock
	// pending holds departures whose removal failed and is being retried.
	pending map[binding]struct{}
	closing bool

	// pumps tracks running read pumps so Shutdown can wait for them.
	pumps sync.WaitGroup
	done  chan struct{}

	retryBase time.Duration
	retryMax  time.Duration
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func NewHub(store RoomStore, m *metrics.Metrics) *Hub {
	return &Hub{
		store:   store,
		metrics: m,
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		users:   make(map[binding]*Client),
		locks:   make(map[string]*roomLock),
		pending: make(map[binding]struct{}),
		done:    make(chan struct{}),

		retryBase: 500 * time.Millisecond,
		retryMax:  30 * time.Second,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	closing := h.closing
	h.mu.Unlock()
	if closing {
		c.close()
	}
	h.metrics.ConnectionOpened()
	logger.Debug("signaling connection opened", zap.String("connId", c.id))
}

// unregister runs once per connection, after its read pump stops. During
// shutdown the connection's membership is left in place.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	closing := h.closing
	h.mu.Unlock()
	if !closing {
		h.release(c)
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()

	h.metrics.ConnectionClosed()
	logger.Debug("signaling connection closed", zap.String("connId", c.id))
}

// Shutdown closes every open connection and stops pending removal retries.
// Participants stay in their rooms. It returns once every read pump has
// exited or ctx is done.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if !h.closing {
		h.closing = true
		close(h.done)
	}
	for c := range h.clients {
		c.close()
	}
	h.mu.Unlock()

	exited := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(exited)
	}()
	select {
	case <-exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// lockRoom serializes membership changes and fan-out within one room.
func (h *Hub) lockRoom(roomID string) (unlock func()) {
	h.mu.Lock()
	l, ok := h.locks[roomID]
	if !ok {
		l = &roomLock{}
		h.locks[roomID] = l
	}
	l.refs++
	h.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		h.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, roomID)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) bindingOf(c *Client) *binding {
	h.mu.Lock()
	defer h.mu.Unlock()
	return c.binding
}

// bindLocked records b for c. A retried removal for the same participant is
// dropped since they are back. Caller holds h.mu.
func (h *Hub) bindLocked(c *Client, b *binding) {
	delete(h.pending, *b)
	c.binding = b
	members, ok := h.rooms[b.roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[b.roomID] = members
	}
	members[c] = struct{}{}
	h.users[*b] = c
}

// unbindLocked clears c's binding. Caller holds h.mu.
func (h *Hub) unbindLocked(c *Client) {
	b := c.binding
	if b == nil {
		return
	}
	c.binding = nil
	if members, ok := h.rooms[b.roomID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, b.roomID)
		}
	}
	if h.users[*b] == c {
		delete(h.users, *b)
	}
}

func (h *Hub) dispatch(c *Client, data []byte) {
	msgType, payload, err := decode(data)
	if err != nil {
		h.notify(c, msgType, err)
		return
	}

	switch p := payload.(type) {
	case *JoinPayload:
		h.join(c, p)
	case *LeavePayload:
		h.leave(c, p)
	case *OfferPayload:
		h.forward(c, TypeOffer, p.RoomID, p.UserID, forwardedOffer{UserID: p.UserID, SDPOffer: p.SDPOffer})
	case *AnswerPayload:
		h.forward(c, TypeAnswer, p.RoomID, p.UserID, forwardedAnswer{UserID: p.UserID, SDPAnswer: p.SDPAnswer})
	case *ICECandidatePayload:
		h.forward(c, TypeICECandidate, p.RoomID, p.UserID, forwardedCandidate{UserID: p.UserID, Candidate: p.Candidate})
	}
}

func (h *Hub) join(c *Client, p *JoinPayload) {
	if h.bindingOf(c) != nil {
		h.metrics.JoinRejected(metrics.RejectAlreadyJoined)
		h.notify(c, TypeJoin, apperrors.New(apperrors.ErrCodeAlreadyJoined, "Connection has already joined a room"))
		return
	}

	unlock := h.lockRoom(p.RoomID)
	defer unlock()

	room, err := h.store.AddParticipant(context.Background(), p.RoomID, p.UserID)
	if err != nil {
		h.metrics.JoinRejected(rejectReason(err))
		h.notify(c, TypeJoin, err)
		return
	}

	b := &binding{roomID: p.RoomID, userID: p.UserID}
	h.mu.Lock()
	old := h.users[*b]
	if old != nil {
		h.unbindLocked(old)
	}
	h.bindLocked(c, b)
	h.mu.Unlock()

	if old != nil {
		logger.Info("participant reconnected, superseding previous connection",
			zap.String("roomId", p.RoomID), zap.String("userId", p.UserID), zap.String("connId", old.id))
		h.notify(old, TypeJoin, apperrors.New(apperrors.ErrCodeSuperseded, "Participant joined from another connection"))
	}

	h.send(c, TypeJoined, JoinedPayload{
		RoomID:       room.ID,
		UserID:       p.UserID,
		Participants: room.Participants,
		Settings:     room.Settings,
	})
	h.broadcast(room.ID, c, TypeUserJoined, PeerPayload{UserID: p.UserID, Participants: room.Participants}, room.Participants)

	logger.Info("participant joined",
		zap.String("roomId", room.ID), zap.String("userId", p.UserID), zap.Int("participants", len(room.Participants)))
}

func (h *Hub) leave(c *Client, p *LeavePayload) {
	b := h.bindingOf(c)
	if b == nil || b.roomID != p.RoomID || b.userID != p.UserID {
		h.notify(c, TypeLeave, apperrors.New(apperrors.ErrCodeNotAMember, "Connection is not joined to this room"))
		return
	}
	h.release(c)
}

// forward sends out to every other current member of roomID.
func (h *Hub) forward(c *Client, msgType, roomID, userID string, out interface{}) {
	ctx := context.Background()

	b := h.bindingOf(c)
	if b == nil || b.roomID != roomID || b.userID != userID {
		if _, err := h.store.GetRoom(ctx, roomID); err != nil {
			h.notify(c, msgType, err)
			return
		}
		h.notify(c, msgType, apperrors.New(apperrors.ErrCodeNotAMember, "Connection is not joined to this room"))
		return
	}

	unlock := h.lockRoom(roomID)
	defer unlock()

	if h.bindingOf(c) != b {
		h.notify(c, msgType, apperrors.New(apperrors.ErrCodeNotAMember, "Connection is not joined to this room"))
		return
	}
	participants, err := h.store.ListParticipants(ctx, roomID)
	if err != nil {
		h.notify(c, msgType, err)
		return
	}

	h.metrics.MessageRelayed(msgType)
	h.broadcast(roomID, c, msgType, out, participants)
}

// release unbinds c and removes its participant from the room. Only the
// call that clears the binding touches the store, so repeated triggers for
// the same binding announce the departure once. A removal that cannot be
// persisted is retried in the background until it commits.
func (h *Hub) release(c *Client) {
	b := h.bindingOf(c)
	if b == nil {
		return
	}

	unlock := h.lockRoom(b.roomID)
	defer unlock()

	h.mu.Lock()
	if c.binding != b {
		h.mu.Unlock()
		return
	}
	h.unbindLocked(c)
	h.mu.Unlock()

	if err := h.removeParticipant(*b); err != nil {
		logger.Error("failed to remove participant, will retry",
			zap.String("roomId", b.roomID), zap.String("userId", b.userID), zap.Error(err))
		h.retryRemoval(*b)
	}
}

// removeParticipant removes b's participant and announces the departure once
// the removal is persisted. Caller holds the room lock.
func (h *Hub) removeParticipant(b binding) error {
	remaining, deleted, err := h.store.RemoveParticipant(context.Background(), b.roomID, b.userID)
	if err != nil {
		return err
	}
	logger.Info("participant left", zap.String("roomId", b.roomID), zap.String("userId", b.userID), zap.Bool("roomDeleted", deleted))
	if !deleted {
		h.broadcast(b.roomID, nil, TypeUserLeft, PeerPayload{UserID: b.userID, Participants: remaining}, remaining)
	}
	return nil
}

// retryRemoval keeps retrying b's removal with capped exponential backoff.
// It gives up when the participant rejoins, the room ends or the hub shuts
// down.
func (h *Hub) retryRemoval(b binding) {
	h.mu.Lock()
	if _, ok := h.pending[b]; ok {
		h.mu.Unlock()
		return
	}
	h.pending[b] = struct{}{}
	h.mu.Unlock()

	go func() {
		delay := h.retryBase
		for {
			select {
			case <-h.done:
				return
			case <-time.After(delay):
			}
			if h.retryOnce(b) {
				return
			}
			delay *= 2
			if delay > h.retryMax {
				delay = h.retryMax
			}
		}
	}()
}

// retryOnce reports whether b needs no further attempts.
func (h *Hub) retryOnce(b binding) bool {
	unlock := h.lockRoom(b.roomID)
	defer unlock()

	h.mu.Lock()
	_, stillPending := h.pending[b]
	h.mu.Unlock()
	if !stillPending {
		return true
	}

	if err := h.removeParticipant(b); err != nil {
		logger.Warn("participant removal retry failed",
			zap.String("roomId", b.roomID), zap.String("userId", b.userID), zap.Error(err))
		return false
	}

	h.mu.Lock()
	delete(h.pending, b)
	h.mu.Unlock()
	return true
}

// EndRoom deletes the room and tells every bound connection it has ended.
// Connections stay open and may join another room.
func (h *Hub) EndRoom(ctx context.Context, roomID string) error {
	unlock := h.lockRoom(roomID)
	defer unlock()

	if err := h.store.DeleteRoom(ctx, roomID); err != nil {
		return err
	}

	h.mu.Lock()
	bound := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		bound = append(bound, c)
	}
	for _, c := range bound {
		h.unbindLocked(c)
	}
	for b := range h.pending {
		if b.roomID == roomID {
			delete(h.pending, b)
		}
	}
	h.mu.Unlock()

	for _, c := range bound {
		h.send(c, TypeRoomEnded, RoomEndedPayload{RoomID: roomID})
	}
	logger.Info("room ended", zap.String("roomId", roomID), zap.Int("connections", len(bound)))
	return nil
}

// broadcast delivers to the connections bound to roomID whose participant is
// in participants, skipping sender, which may be nil. Caller holds the room
// lock.
func (h *Hub) broadcast(roomID string, sender *Client, msgType string, payload interface{}, participants []string) {
	msg, err := encode(msgType, payload)
	if err != nil {
		logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}

	members := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		members[p] = struct{}{}
	}

	h.mu.Lock()
	recipients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if c == sender {
			continue
		}
		if _, ok := members[c.binding.userID]; ok {
			recipients = append(recipients, c)
		}
	}
	h.mu.Unlock()

	for _, c := range recipients {
		h.deliver(c, msg)
	}
}

func (h *Hub) send(c *Client, msgType string, payload interface{}) {
	msg, err := encode(msgType, payload)
	if err != nil {
		logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.deliver(c, msg)
}

// deliver never blocks. A recipient that cannot take the message is closed,
// which schedules its cleanup through its read pump.
func (h *Hub) deliver(c *Client, msg []byte) {
	if c.enqueue(msg) {
		return
	}
	h.metrics.DeliveryDropped()
	logger.Warn("dropping slow signaling connection", zap.String("connId", c.id))
	c.close()
}

// notify sends an error notice to c alone.
func (h *Hub) notify(c *Client, msgType string, err error) {
	appErr := apperrors.As(err)
	if appErr.Code == apperrors.ErrCodeStorage || appErr.Code == apperrors.ErrCodeInternal {
		logger.Error("signaling request failed", zap.String("connId", c.id), zap.String("type", msgType), zap.Error(err))
	} else {
		logger.Debug("signaling request refused", zap.String("connId", c.id), zap.String("type", msgType), zap.String("code", string(appErr.Code)))
	}
	h.send(c, TypeError, ErrorPayload{Code: appErr.Code, Message: appErr.Message, Type: msgType})
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrRoomFull):
		return metrics.RejectRoomFull
	case errors.Is(err, apperrors.ErrRoomNotFound):
		return metrics.RejectRoomNotFound
	default:
		return metrics.RejectStorage
	}
}
