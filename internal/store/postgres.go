package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

type PostgresStore struct {
	db *sql.DB
	// verifyScoped checks the backend-scoped token minted by the exchange
	// step. Document visibility queries run only with a valid one.
	verifyScoped func(token string) error
}

func NewPostgresStore(db *sql.DB, verifyScoped func(token string) error) *PostgresStore {
	return &PostgresStore{db: db, verifyScoped: verifyScoped}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetDocumentAccess returns the document's visibility record together with
// the requester's relation to it. Returns ErrUnauthorized for a missing or
// invalid scoped token and ErrNotFound when the document does not exist.
func (s *PostgresStore) GetDocumentAccess(ctx context.Context, token, documentID, requesterID string) (DocumentAccess, error) {
	if s.verifyScoped != nil {
		if err := s.verifyScoped(token); err != nil {
			return DocumentAccess{}, ErrUnauthorized
		}
	}

	var access DocumentAccess
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, org_id, created_at, updated_at
		FROM documents WHERE id = $1
	`, documentID).Scan(
		&access.Document.ID,
		&access.Document.Name,
		&access.Document.OwnerID,
		&access.Document.OrgID,
		&access.Document.CreatedAt,
		&access.Document.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DocumentAccess{}, ErrNotFound
	}
	if err != nil {
		return DocumentAccess{}, fmt.Errorf("lookup document: %w", err)
	}

	access.IsOwner = access.Document.OwnerID == requesterID

	if access.Document.OrgID != nil {
		err = s.db.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM org_memberships WHERE org_id = $1 AND user_id = $2
			)
		`, *access.Document.OrgID, requesterID).Scan(&access.IsOrgMember)
		if err != nil {
			return DocumentAccess{}, fmt.Errorf("check org membership: %w", err)
		}
	}

	return access, nil
}

// GetDocumentsByIDs maps room ids to {id, name}. Unknown ids are silently
// omitted, matching the dashboard's tolerance for stale room references.
func (s *PostgresStore) GetDocumentsByIDs(ctx context.Context, ids []string) ([]DocumentInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name FROM documents WHERE id IN (%s)
	`, strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("lookup documents: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]DocumentInfo, len(ids))
	for rows.Next() {
		var info DocumentInfo
		if err := rows.Scan(&info.ID, &info.Name); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		byID[info.ID] = info
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	// Preserve the requested order for the ids that resolved.
	infos := make([]DocumentInfo, 0, len(byID))
	for _, id := range ids {
		if info, ok := byID[id]; ok {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// ListDirectoryUsers returns every known user in creation order, backing
// the directory endpoint consumed by the room bootstrap.
func (s *PostgresStore) ListDirectoryUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, first_name, username, email, avatar_key
		FROM users ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.FullName, &user.FirstName, &user.Username, &user.Email, &user.AvatarKey); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, first_name, username, email, avatar_key, password_hash
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.FullName, &user.FirstName, &user.Username, &user.Email, &user.AvatarKey, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, first_name, username, email, avatar_key, password_hash
		FROM users WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&user.ID, &user.FullName, &user.FirstName, &user.Username, &user.Email, &user.AvatarKey, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, first_name, username, email, avatar_key, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.FullName, user.FirstName, user.Username, user.Email, user.AvatarKey, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
