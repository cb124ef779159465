package room

import (
	"context"
	"strings"
)

// RoomsLoader resolves room ids to display names; the HTTP Client
// satisfies it.
type RoomsLoader interface {
	GetDocuments(ctx context.Context, ids []string) ([]RoomInfo, error)
}

// Resolver answers the realtime provider's resolution callbacks against
// the already-loaded directory. ResolveUsers and
// ResolveMentionSuggestions are synchronous and never touch the network;
// their latency is bounded by the resident snapshot.
type Resolver struct {
	directory *Directory
	rooms     RoomsLoader
}

func NewResolver(directory *Directory, rooms RoomsLoader) *Resolver {
	return &Resolver{directory: directory, rooms: rooms}
}

// ResolveUsers maps each requested id to its directory entry. An unknown
// id yields a nil entry, an explicit unresolved marker the provider
// renders a fallback for. It never fails.
func (r *Resolver) ResolveUsers(ids []string) []*User {
	snapshot := r.directory.Snapshot()
	byID := make(map[string]User, len(snapshot))
	for _, user := range snapshot {
		byID[user.ID] = user
	}

	resolved := make([]*User, len(ids))
	for i, id := range ids {
		if user, ok := byID[id]; ok {
			entry := user
			resolved[i] = &entry
		}
	}
	return resolved
}

// ResolveMentionSuggestions returns the ids of directory entries whose
// name contains the query case-insensitively. An empty query returns all
// ids in load order.
func (r *Resolver) ResolveMentionSuggestions(query string) []string {
	snapshot := r.directory.Snapshot()
	needle := strings.ToLower(query)

	ids := make([]string, 0, len(snapshot))
	for _, user := range snapshot {
		if needle == "" || strings.Contains(strings.ToLower(user.Name), needle) {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

// ResolveRoomsInfo resolves room ids to {id, name} via the document
// storage collaborator.
func (r *Resolver) ResolveRoomsInfo(ctx context.Context, roomIDs []string) ([]RoomInfo, error) {
	return r.rooms.GetDocuments(ctx, roomIDs)
}
