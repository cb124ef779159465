package store

import "time"

type User struct {
	ID           string
	FullName     string
	FirstName    string
	Username     string
	Email        string
	AvatarKey    string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Document struct {
	ID        string
	Name      string
	OwnerID   string
	OrgID     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentAccess is the visibility record consulted on every join attempt.
// It is computed fresh per query; ownership and org membership can change
// between requests.
type DocumentAccess struct {
	Document    Document
	IsOwner     bool
	IsOrgMember bool
}

// DocumentInfo labels a room on dashboards showing collaboration
// participation.
type DocumentInfo struct {
	ID   string
	Name string
}
