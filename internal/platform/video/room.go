// Package video issues room identifiers and join tokens for the external
// video SDK. Media transport is handled entirely by the SDK.
package video

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// RoomPrefix marks every room id this service generates.
const RoomPrefix = "mc-"

const (
	roomTokenLength = 10
	roomAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewRoomID returns RoomPrefix followed by ten random lowercase
// alphanumerics (about 51 bits of entropy).
func NewRoomID() (string, error) {
	var b strings.Builder
	b.Grow(len(RoomPrefix) + roomTokenLength)
	b.WriteString(RoomPrefix)

	max := big.NewInt(int64(len(roomAlphabet)))
	for i := 0; i < roomTokenLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate room id: %w", err)
		}
		b.WriteByte(roomAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// IsRoomID reports whether s has the shape of a generated room id.
func IsRoomID(s string) bool {
	if !strings.HasPrefix(s, RoomPrefix) || len(s) != len(RoomPrefix)+roomTokenLength {
		return false
	}
	for _, r := range s[len(RoomPrefix):] {
		if !strings.ContainsRune(roomAlphabet, r) {
			return false
		}
	}
	return true
}
