package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CUknot/videocall_backend/apperrors"
	"github.com/CUknot/videocall_backend/models"
	"github.com/CUknot/videocall_backend/rooms"
)

type discard struct{}

func (discard) LoadAll(context.Context) (*rooms.Snapshot, error)   { return &rooms.Snapshot{}, nil }
func (discard) SaveRoom(context.Context, models.RoomRecord) error { return nil }
func (discard) DeleteRoom(context.Context, string) error          { return nil }

type testPeer struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server) *testPeer {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testPeer{t: t, conn: conn}
}

func (p *testPeer) send(msgType string, payload interface{}) {
	p.t.Helper()
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, frame(p.t, msgType, payload)))
}

func (p *testPeer) expect(msgType string) json.RawMessage {
	p.t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(p.t, p.conn.ReadJSON(&env))
	require.Equal(p.t, msgType, env.Type, "payload: %s", env.Payload)
	return env.Payload
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *rooms.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	// Connections are torn down asynchronously after the test returns, so
	// keep persistence off the temp dir.
	hub, store := newHubWith(discard{})
	router := gin.New()
	router.GET("/ws", hub.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hub.Shutdown(ctx)
		srv.Close()
	})
	return srv, hub, store
}

func TestSignalingOverWebsocket(t *testing.T) {
	srv, _, store := newTestServer(t)
	roomID := createRoom(t, store, 2)

	alice, bob, carol := dial(t, srv), dial(t, srv), dial(t, srv)

	alice.send(TypeJoin, JoinPayload{RoomID: roomID, UserID: "alice"})
	alice.expect(TypeJoined)
	bob.send(TypeJoin, JoinPayload{RoomID: roomID, UserID: "bob"})
	bob.expect(TypeJoined)
	alice.expect(TypeUserJoined)

	carol.send(TypeJoin, JoinPayload{RoomID: roomID, UserID: "carol"})
	var refused ErrorPayload
	require.NoError(t, json.Unmarshal(carol.expect(TypeError), &refused))
	assert.Equal(t, apperrors.ErrCodeRoomFull, refused.Code)

	participants, err := store.ListParticipants(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, participants)

	alice.send(TypeOffer, OfferPayload{RoomID: roomID, UserID: "alice", SDPOffer: json.RawMessage(`{"type":"offer","sdp":"v=0"}`)})
	var offer forwardedOffer
	require.NoError(t, json.Unmarshal(bob.expect(TypeOffer), &offer))
	assert.Equal(t, "alice", offer.UserID)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0"}`, string(offer.SDPOffer))

	// Alice's queue is FIFO, so her next message being the answer shows her
	// own offer never came back to her.
	bob.send(TypeAnswer, AnswerPayload{RoomID: roomID, UserID: "bob", SDPAnswer: json.RawMessage(`{"type":"answer","sdp":"v=0"}`)})
	var answer forwardedAnswer
	require.NoError(t, json.Unmarshal(alice.expect(TypeAnswer), &answer))
	assert.Equal(t, "bob", answer.UserID)

	// Closing the socket is an implicit leave.
	require.NoError(t, bob.conn.Close())
	var left PeerPayload
	require.NoError(t, json.Unmarshal(alice.expect(TypeUserLeft), &left))
	assert.Equal(t, "bob", left.UserID)
	assert.Equal(t, []string{"alice"}, left.Participants)

	// The freed seat can be taken.
	carol.send(TypeJoin, JoinPayload{RoomID: roomID, UserID: "carol"})
	carol.expect(TypeJoined)
}

func TestBadFrameKeepsConnectionOpen(t *testing.T) {
	srv, _, store := newTestServer(t)
	roomID := createRoom(t, store, 10)
	peer := dial(t, srv)

	require.NoError(t, peer.conn.WriteMessage(websocket.TextMessage, []byte("hello")))
	var notice ErrorPayload
	require.NoError(t, json.Unmarshal(peer.expect(TypeError), &notice))
	assert.Equal(t, apperrors.ErrCodeInvalidMessage, notice.Code)

	peer.send(TypeJoin, JoinPayload{RoomID: roomID, UserID: "alice"})
	peer.expect(TypeJoined)
}

func TestShutdownKeepsRoomMembership(t *testing.T) {
	srv, hub, store := newTestServer(t)
	roomID := createRoom(t, store, 10)
	alice, bob := dial(t, srv), dial(t, srv)

	alice.send(TypeJoin, JoinPayload{RoomID: roomID, UserID: "alice"})
	alice.expect(TypeJoined)
	bob.send(TypeJoin, JoinPayload{RoomID: roomID, UserID: "bob"})
	bob.expect(TypeJoined)
	alice.expect(TypeUserJoined)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, hub.Shutdown(ctx))

	room, err := store.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, room.Participants)

	// Both sockets were closed by the server, with no userLeft first.
	for _, peer := range []*testPeer{alice, bob} {
		peer.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := peer.conn.ReadMessage()
		assert.Error(t, err, "unexpected message %s", data)
	}
}
