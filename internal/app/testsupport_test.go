package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"scribe/api/internal/account"
	"scribe/api/internal/config"
	"scribe/api/internal/realtime"
	"scribe/api/internal/session"
	"scribe/api/internal/store"
)

type fakeStore struct {
	users     map[string]store.User
	userOrder []string
	docs      map[string]store.Document
	members   map[string]map[string]bool // orgID -> userID -> member

	accessCalls     int
	lastAccessToken string
	pingErr         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   map[string]store.User{},
		docs:    map[string]store.Document{},
		members: map[string]map[string]bool{},
	}
}

func (f *fakeStore) addDocument(doc store.Document) {
	f.docs[doc.ID] = doc
}

func (f *fakeStore) addOrgMember(orgID, userID string) {
	if f.members[orgID] == nil {
		f.members[orgID] = map[string]bool{}
	}
	f.members[orgID][userID] = true
}

func (f *fakeStore) GetDocumentAccess(_ context.Context, token, documentID, requesterID string) (store.DocumentAccess, error) {
	f.accessCalls++
	f.lastAccessToken = token
	doc, ok := f.docs[documentID]
	if !ok {
		return store.DocumentAccess{}, store.ErrNotFound
	}
	access := store.DocumentAccess{Document: doc, IsOwner: doc.OwnerID == requesterID}
	if doc.OrgID != nil {
		access.IsOrgMember = f.members[*doc.OrgID][requesterID]
	}
	return access, nil
}

func (f *fakeStore) GetDocumentsByIDs(_ context.Context, ids []string) ([]store.DocumentInfo, error) {
	var infos []store.DocumentInfo
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			infos = append(infos, store.DocumentInfo{ID: doc.ID, Name: doc.Name})
		}
	}
	return infos, nil
}

func (f *fakeStore) ListDirectoryUsers(_ context.Context) ([]store.User, error) {
	users := make([]store.User, 0, len(f.userOrder))
	for _, id := range f.userOrder {
		users = append(users, f.users[id])
	}
	return users, nil
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (store.User, error) {
	user, ok := f.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user store.User) error {
	f.users[user.ID] = user
	f.userOrder = append(f.userOrder, user.ID)
	return nil
}

type testApp struct {
	server   *HTTPServer
	service  *Service
	store    *fakeStore
	realtime *realtime.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fs := newFakeStore()
	accounts := account.NewService(fs, session.NewRedisStoreWithClient(client), "test-secret", time.Hour, time.Minute)
	rt := realtime.NewClient("rt-test-secret", time.Hour)

	cfg := config.Config{ExchangeAudience: "storage"}
	svc := New(cfg, fs, accounts, rt, nil)
	return &testApp{
		server:   NewHTTPServer(svc, "*"),
		service:  svc,
		store:    fs,
		realtime: rt,
	}
}

// signUpAndIn provisions an account and returns its session token and id.
func (a *testApp) signUpAndIn(t *testing.T, email, fullName string) (token, userID string) {
	t.Helper()
	ctx := context.Background()
	user, err := a.service.Accounts().SignUp(ctx, account.SignUpRequest{
		Email:    email,
		Password: "correct-horse",
		FullName: fullName,
	})
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	sess, err := a.service.Accounts().SignIn(ctx, email, "correct-horse")
	if err != nil {
		t.Fatalf("sign in %s: %v", email, err)
	}
	return sess.Token, user.ID
}

func (a *testApp) post(t *testing.T, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rr, req)
	return rr
}
