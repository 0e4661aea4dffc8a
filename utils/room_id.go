package utils

import (
	gonanoid "github.com/matoous/go-nanoid"
)

const (
	roomIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	roomIDLength   = 12
)

// GenerateRoomID returns a short random room id. Uniqueness is enforced by
// the caller, which retries on collision.
func GenerateRoomID() (string, error) {
	return gonanoid.Generate(roomIDAlphabet, roomIDLength)
}
