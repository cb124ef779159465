package room

import (
	"context"
	"time"
)

// Default layout margins applied to a room's shared storage on first
// creation.
const (
	LeftMarginDefault  = 56
	RightMarginDefault = 56
)

// ThrottleDefault is the presence update throttle handed to the provider.
const ThrottleDefault = 16 * time.Millisecond

// InitialStorage seeds a room's shared state when the room is first
// created.
type InitialStorage struct {
	LeftMargin  int `json:"leftMargin"`
	RightMargin int `json:"rightMargin"`
}

func DefaultInitialStorage() InitialStorage {
	return InitialStorage{LeftMargin: LeftMarginDefault, RightMargin: RightMarginDefault}
}

// ProviderConfig wires a room view into the realtime provider: the
// authorization callback, the resolution callbacks, and the initial
// shared state.
type ProviderConfig struct {
	RoomID         string
	Throttle       time.Duration
	AuthEndpoint   func(ctx context.Context) ([]byte, error)
	Resolver       *Resolver
	InitialStorage InitialStorage
}

// NewProviderConfig builds the provider wiring for one room view. The
// auth endpoint closure calls the server's authorization endpoint for
// this room; the resolver serves presence, mentions, and room names.
func NewProviderConfig(client *Client, resolver *Resolver, roomID string) ProviderConfig {
	return ProviderConfig{
		RoomID:   roomID,
		Throttle: ThrottleDefault,
		AuthEndpoint: func(ctx context.Context) ([]byte, error) {
			return client.Authorize(ctx, roomID)
		},
		Resolver:       resolver,
		InitialStorage: DefaultInitialStorage(),
	}
}
