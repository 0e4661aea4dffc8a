package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/CUknot/videocall_backend/apperrors"
	"github.com/CUknot/videocall_backend/models"
)

// Inbound message types.
const (
	TypeJoin         = "join"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "iceCandidate"
	TypeLeave        = "leave"
)

// Outbound-only message types.
const (
	TypeJoined     = "joined"
	TypeUserJoined = "userJoined"
	TypeUserLeft   = "userLeft"
	TypeRoomEnded  = "roomEnded"
	TypeError      = "error"
)

// Envelope is the frame every message travels in.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// target is implemented by every inbound payload.
type target interface {
	target() (roomID, userID string)
}

type JoinPayload struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
	UserID string `json:"userId" validate:"required,max=255"`
}

type LeavePayload struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
	UserID string `json:"userId" validate:"required,max=255"`
}

// The negotiation payloads carry SDP and ICE data the relay never inspects.
type OfferPayload struct {
	RoomID   string          `json:"roomId" validate:"required,max=64"`
	UserID   string          `json:"userId" validate:"required,max=255"`
	SDPOffer json.RawMessage `json:"sdpOffer" validate:"present"`
}

type AnswerPayload struct {
	RoomID    string          `json:"roomId" validate:"required,max=64"`
	UserID    string          `json:"userId" validate:"required,max=255"`
	SDPAnswer json.RawMessage `json:"sdpAnswer" validate:"present"`
}

type ICECandidatePayload struct {
	RoomID    string          `json:"roomId" validate:"required,max=64"`
	UserID    string          `json:"userId" validate:"required,max=255"`
	Candidate json.RawMessage `json:"candidate" validate:"present"`
}

func (p *JoinPayload) target() (string, string)         { return p.RoomID, p.UserID }
func (p *LeavePayload) target() (string, string)        { return p.RoomID, p.UserID }
func (p *OfferPayload) target() (string, string)        { return p.RoomID, p.UserID }
func (p *AnswerPayload) target() (string, string)       { return p.RoomID, p.UserID }
func (p *ICECandidatePayload) target() (string, string) { return p.RoomID, p.UserID }

// Forwarded negotiation messages. The sender's room is implied.
type forwardedOffer struct {
	UserID   string          `json:"userId"`
	SDPOffer json.RawMessage `json:"sdpOffer"`
}

type forwardedAnswer struct {
	UserID    string          `json:"userId"`
	SDPAnswer json.RawMessage `json:"sdpAnswer"`
}

type forwardedCandidate struct {
	UserID    string          `json:"userId"`
	Candidate json.RawMessage `json:"candidate"`
}

type JoinedPayload struct {
	RoomID       string          `json:"roomId"`
	UserID       string          `json:"userId"`
	Participants []string        `json:"participants"`
	Settings     models.Settings `json:"settings"`
}

// PeerPayload announces a membership change to the rest of the room.
type PeerPayload struct {
	UserID       string   `json:"userId"`
	Participants []string `json:"participants"`
}

type RoomEndedPayload struct {
	RoomID string `json:"roomId"`
}

type ErrorPayload struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Type    string              `json:"type,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	// present rejects a missing or null JSON value.
	v.RegisterValidation("present", func(fl validator.FieldLevel) bool {
		raw := bytes.TrimSpace(fl.Field().Bytes())
		return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
	})
	return v
}

// decode parses an inbound frame into its typed payload. The returned type is
// set whenever the envelope itself was readable.
func decode(data []byte) (string, target, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, apperrors.New(apperrors.ErrCodeInvalidMessage, "Message is not a valid envelope")
	}

	var payload target
	switch env.Type {
	case TypeJoin:
		payload = &JoinPayload{}
	case TypeLeave:
		payload = &LeavePayload{}
	case TypeOffer:
		payload = &OfferPayload{}
	case TypeAnswer:
		payload = &AnswerPayload{}
	case TypeICECandidate:
		payload = &ICECandidatePayload{}
	case "":
		return "", nil, apperrors.New(apperrors.ErrCodeInvalidMessage, "Message type is required")
	default:
		return env.Type, nil, apperrors.Newf(apperrors.ErrCodeUnknownMessageType, "Unknown message type %q", env.Type)
	}

	if len(env.Payload) == 0 {
		return env.Type, nil, apperrors.New(apperrors.ErrCodeInvalidMessage, "Payload is required")
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return env.Type, nil, apperrors.New(apperrors.ErrCodeInvalidMessage, "Payload is malformed")
	}
	if err := validate.Struct(payload); err != nil {
		return env.Type, nil, apperrors.New(apperrors.ErrCodeInvalidMessage, describe(err))
	}
	return env.Type, payload, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Payload is invalid"
	}
	fe := verrs[0]
	if fe.Tag() == "max" {
		return fmt.Sprintf("Field %s is too long", fe.Field())
	}
	return fmt.Sprintf("Field %s is required", fe.Field())
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: body})
}
