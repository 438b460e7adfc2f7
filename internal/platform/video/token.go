package video

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoomClaims scope a token to one room and one participant.
type RoomClaims struct {
	Room string `json:"room"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 room tokens that the video SDK exchanges for a
// media session.
type TokenIssuer struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenIssuer builds an issuer from a 64-char hex key. An empty key
// generates a random one, so tokens do not survive a restart.
func NewTokenIssuer(hexKey string, ttl time.Duration) (*TokenIssuer, error) {
	var key []byte
	if hexKey == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
	} else {
		var err error
		key, err = hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("decode signing key: %w", err)
		}
		if len(key) != 32 {
			return nil, errors.New("signing key must be 32 bytes")
		}
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenIssuer{key: key, ttl: ttl, issuer: "mediconsult", now: time.Now}, nil
}

// Issue returns a signed token for userID to join room.
func (t *TokenIssuer) Issue(room string, userID int64, name string) (string, error) {
	now := t.now()
	claims := RoomClaims{
		Room: room,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign room token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks its signature, expiry and room.
func (t *TokenIssuer) Verify(token, room string) (*RoomClaims, error) {
	claims := &RoomClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid room token: %w", err)
	}
	if claims.Room != room {
		return nil, errors.New("invalid room token: room mismatch")
	}
	return claims, nil
}
