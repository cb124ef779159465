package app

import (
	"context"
	"errors"

	"scribe/api/internal/access"
	"scribe/api/internal/account"
	"scribe/api/internal/avatar"
	"scribe/api/internal/config"
	"scribe/api/internal/identity"
	"scribe/api/internal/presence"
	"scribe/api/internal/realtime"
	"scribe/api/internal/store"
)

// ErrRoomUnauthorized covers every denial on the realtime-auth path.
// Unauthenticated callers, unknown documents, and requesters with no
// relation all collapse into it so the response never reveals whether the
// document exists.
var ErrRoomUnauthorized = errors.New("room unauthorized")

type dataStore interface {
	GetDocumentAccess(ctx context.Context, token, documentID, requesterID string) (store.DocumentAccess, error)
	GetDocumentsByIDs(ctx context.Context, ids []string) ([]store.DocumentInfo, error)
	ListDirectoryUsers(ctx context.Context) ([]store.User, error)
	Ping(ctx context.Context) error
}

type Service struct {
	cfg       config.Config
	store     dataStore
	accounts  *account.Service
	resolver  *identity.Resolver
	evaluator *access.Evaluator
	realtime  *realtime.Client
	avatars   *avatar.Resolver
}

func New(cfg config.Config, dataStore dataStore, accounts *account.Service, rt *realtime.Client, avatars *avatar.Resolver) *Service {
	return &Service{
		cfg:       cfg,
		store:     dataStore,
		accounts:  accounts,
		resolver:  identity.NewResolver(accounts, cfg.ExchangeAudience),
		evaluator: access.NewEvaluator(dataStore),
		realtime:  rt,
		avatars:   avatars,
	}
}

func (s *Service) Accounts() *account.Service {
	return s.accounts
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ResolveRequester verifies the caller's session and exchanges for the
// backend-scoped token. It runs before the request body is even parsed;
// an unauthenticated caller never triggers a document lookup.
func (s *Service) ResolveRequester(ctx context.Context, sessionToken string) (identity.Identity, string, error) {
	ident, scoped, err := s.resolver.Resolve(ctx, sessionToken)
	if err != nil {
		return identity.Identity{}, "", ErrRoomUnauthorized
	}
	return ident, scoped, nil
}

// IssueRoomSession evaluates access and, when allowed, mints a realtime
// credential bound to the requester and the single requested room. Every
// denial reason maps to ErrRoomUnauthorized.
func (s *Service) IssueRoomSession(ctx context.Context, ident identity.Identity, scopedToken, roomID string) (realtime.AuthorizeResult, error) {
	if roomID == "" {
		return realtime.AuthorizeResult{}, ErrRoomUnauthorized
	}

	decision, err := s.evaluator.Evaluate(ctx, scopedToken, ident.ID, roomID)
	if errors.Is(err, store.ErrUnauthorized) {
		return realtime.AuthorizeResult{}, ErrRoomUnauthorized
	}
	if err != nil {
		return realtime.AuthorizeResult{}, err
	}
	if !decision.Allowed {
		return realtime.AuthorizeResult{}, ErrRoomUnauthorized
	}

	attrs := presence.Derive(ident.FullName, ident.FirstName, ident.Username, ident.Email)
	session := s.realtime.PrepareSession(ident.ID, realtime.UserInfo{
		Name:   attrs.Name,
		Avatar: s.avatars.Resolve(ctx, ident.AvatarURL),
		Color:  attrs.Color,
	})
	session.Allow(roomID, realtime.FullAccess)
	return session.Authorize()
}

// DirectoryEntry is one row of the user directory consumed by the room
// bootstrap for presence and mention resolution.
type DirectoryEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
}

// DirectoryUsers lists every known user with derived presence attributes
// and resolved avatar URLs.
func (s *Service) DirectoryUsers(ctx context.Context) ([]DirectoryEntry, error) {
	users, err := s.store.ListDirectoryUsers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]DirectoryEntry, 0, len(users))
	for _, user := range users {
		attrs := presence.Derive(user.FullName, user.FirstName, user.Username, user.Email)
		entries = append(entries, DirectoryEntry{
			ID:     user.ID,
			Name:   attrs.Name,
			Avatar: s.avatars.Resolve(ctx, user.AvatarKey),
			Color:  attrs.Color,
		})
	}
	return entries, nil
}

// RoomInfo labels a room on dashboards.
type RoomInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DocumentsInfo resolves room ids to display names. Unknown ids are
// omitted; a dashboard renders its own fallback for those.
func (s *Service) DocumentsInfo(ctx context.Context, ids []string) ([]RoomInfo, error) {
	infos, err := s.store.GetDocumentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	rooms := make([]RoomInfo, 0, len(infos))
	for _, info := range infos {
		rooms = append(rooms, RoomInfo{ID: info.ID, Name: info.Name})
	}
	return rooms, nil
}
