package fichub

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_GetMeta(t *testing.T) {
	const storyURL = "https://forums.example.com/threads/with-this-ring.12345/"

	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/meta" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"abc123","title":"With This Ring","source":"spacebattles","extra":"ignored"}`))
	})

	meta, err := client.GetMeta(context.Background(), storyURL)
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if gotQuery != storyURL {
		t.Errorf("query param: got %q, want %q", gotQuery, storyURL)
	}
	if meta == nil {
		t.Fatal("expected metadata, got nil")
	}
	if meta.ID != "abc123" || meta.Title != "With This Ring" || meta.Source != "spacebattles" {
		t.Errorf("unexpected meta: %+v", meta)
	}
}

func TestClient_GetMeta_Unknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	meta, err := client.GetMeta(context.Background(), "https://nowhere.example.com/")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if meta != nil {
		t.Errorf("unknown story should yield nil meta, got %+v", meta)
	}
}

func TestClient_GetMeta_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetMeta(context.Background(), "https://anywhere.example.com/")
	if err == nil {
		t.Fatal("expected error on upstream failure")
	}
}

func TestClient_GetMeta_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("this is not json"))
	})

	_, err := client.GetMeta(context.Background(), "https://anywhere.example.com/")
	if err == nil {
		t.Fatal("expected error on unparseable body")
	}
}
