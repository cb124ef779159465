package room

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer session-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"users": testUsers})
	})
	mux.HandleFunc("POST /api/documents/info", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs []string `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		infos := make([]RoomInfo, 0, len(body.IDs))
		for _, id := range body.IDs {
			infos = append(infos, RoomInfo{ID: id, Name: "Doc " + id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"documents": infos})
	})
	mux.HandleFunc("POST /api/realtime/auth", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Room string `json:"room"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Room != "doc1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "signed-credential"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientGetUsers(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "session-token")

	users, err := client.GetUsers(context.Background())
	if err != nil {
		t.Fatalf("get users: %v", err)
	}
	if len(users) != 3 || users[0].Name != "Ann Lee" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestClientGetUsersUnauthorized(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "wrong-token")

	if _, err := client.GetUsers(context.Background()); err == nil {
		t.Fatalf("expected error for unauthorized directory fetch")
	}
}

func TestClientGetDocuments(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "session-token")

	infos, err := client.GetDocuments(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("get documents: %v", err)
	}
	if len(infos) != 2 || infos[1].Name != "Doc b" {
		t.Fatalf("unexpected infos %+v", infos)
	}
}

func TestClientAuthorize(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "session-token")

	body, err := client.Authorize(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !strings.Contains(string(body), "signed-credential") {
		t.Fatalf("expected credential body, got %s", body)
	}

	if _, err := client.Authorize(context.Background(), "doc-denied"); err == nil {
		t.Fatalf("expected error for denied room")
	}
}

func TestProviderConfigWiring(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "session-token")
	directory := NewDirectory(client, &fakeNotifier{})
	directory.Load(context.Background())
	resolver := NewResolver(directory, client)

	cfg := NewProviderConfig(client, resolver, "doc1")
	if cfg.InitialStorage.LeftMargin != LeftMarginDefault || cfg.InitialStorage.RightMargin != RightMarginDefault {
		t.Fatalf("unexpected initial storage %+v", cfg.InitialStorage)
	}
	if cfg.Throttle != ThrottleDefault {
		t.Fatalf("unexpected throttle %v", cfg.Throttle)
	}

	body, err := cfg.AuthEndpoint(context.Background())
	if err != nil {
		t.Fatalf("auth endpoint: %v", err)
	}
	if !strings.Contains(string(body), "signed-credential") {
		t.Fatalf("expected credential body, got %s", body)
	}

	if got := cfg.Resolver.ResolveMentionSuggestions(""); len(got) != 3 {
		t.Fatalf("expected full directory from loaded resolver, got %v", got)
	}
}
