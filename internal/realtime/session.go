// Package realtime mints the signed credentials that open a transport
// connection to a room. A credential is bound to exactly one subject and
// one room so it cannot be replayed elsewhere.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"scribe/api/internal/util"
)

type AccessLevel string

// FullAccess is the only access tier; there is no read-only mode.
const FullAccess AccessLevel = "room:write"

var (
	ErrNoRoomAllowed = errors.New("no room allowed on session")
	ErrInvalidGrant  = errors.New("invalid room credential")
)

// UserInfo is the presence payload carried inside the credential and shown
// to other participants.
type UserInfo struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Color  string `json:"color,omitempty"`
}

type Claims struct {
	jwt.RegisteredClaims

	RoomID      string      `json:"room_id"`
	AccessLevel AccessLevel `json:"access_level"`
	UserInfo    UserInfo    `json:"user_info"`
}

type Client struct {
	secret []byte
	ttl    time.Duration
}

func NewClient(secret string, ttl time.Duration) *Client {
	return &Client{secret: []byte(secret), ttl: ttl}
}

// PrepareSession starts building a credential for a subject. The session
// authorizes nothing until Allow scopes it to a room.
func (c *Client) PrepareSession(subjectID string, info UserInfo) *Session {
	return &Session{client: c, subjectID: subjectID, info: info}
}

type Session struct {
	client    *Client
	subjectID string
	info      UserInfo
	roomID    string
	level     AccessLevel
}

// Allow scopes the session to a single room. Calling it again replaces the
// scope; a session never authorizes more than one room.
func (s *Session) Allow(roomID string, level AccessLevel) *Session {
	s.roomID = roomID
	s.level = level
	return s
}

// AuthorizeResult mirrors an HTTP response: an opaque body the client
// hands to the transport, plus a status.
type AuthorizeResult struct {
	Body   []byte
	Status int
}

// Authorize signs the credential. The subject and room ids are baked into
// the signed claims; tampering with either invalidates the signature.
func (s *Session) Authorize() (AuthorizeResult, error) {
	if s.roomID == "" {
		return AuthorizeResult{}, ErrNoRoomAllowed
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.subjectID,
			ID:        util.NewID("rt"),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.client.ttl)),
		},
		RoomID:      s.roomID,
		AccessLevel: s.level,
		UserInfo:    s.info,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.client.secret)
	if err != nil {
		return AuthorizeResult{}, fmt.Errorf("sign room credential: %w", err)
	}

	body, err := json.Marshal(map[string]string{"token": signed})
	if err != nil {
		return AuthorizeResult{}, fmt.Errorf("marshal credential body: %w", err)
	}
	return AuthorizeResult{Body: body, Status: http.StatusOK}, nil
}

// Verify parses a credential and validates its signature and expiry. The
// transport uses it to check that a connection attempt matches the room
// the credential was scoped to.
func (c *Client) Verify(credential string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(credential, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidGrant
	}
	if claims.Subject == "" || claims.RoomID == "" {
		return Claims{}, ErrInvalidGrant
	}
	return claims, nil
}
