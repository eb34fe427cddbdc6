package wordpress_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"craftpress/internal/config"
	"craftpress/internal/services"
	"craftpress/internal/services/wordpress"
)

func newTestClient(t *testing.T, handler http.Handler) *wordpress.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return wordpress.NewClient(config.WordPress{
		URL:         server.URL,
		Username:    "tester",
		AppPassword: "app-pass",
	})
}

func requireBasicAuth(t *testing.T, r *http.Request) {
	t.Helper()
	user, pass, ok := r.BasicAuth()
	if !ok || user != "tester" || pass != "app-pass" {
		t.Errorf("missing or wrong basic auth on %s", r.URL.Path)
	}
}

func TestCreatePostWithImageAndNewCategory(t *testing.T) {
	mux := http.NewServeMux()
	var postPayload map[string]any

	mux.HandleFunc("/wp-json/wp/v2/media", func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		if got := r.Header.Get("Content-Disposition"); got != `attachment; filename="cover.png"` {
			t.Errorf("unexpected disposition %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 77})
	})
	mux.HandleFunc("/wp-json/wp/v2/categories", func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[]`))
		case http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 12, "name": "Games"})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})
	mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		if err := json.NewDecoder(r.Body).Decode(&postPayload); err != nil {
			t.Fatalf("decode post payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "link": "https://blog.example.com/?p=42"})
	})

	client := newTestClient(t, mux)
	imagePath := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(imagePath, []byte("png bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	ref, err := client.CreatePost(context.Background(), services.PostRequest{
		Title:     "Pokemon Pikachu",
		Body:      "<p>Description</p>",
		ImagePath: imagePath,
		Category:  config.Category{ID: 5, Name: "Games"},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if ref.ID != 42 || ref.Link != "https://blog.example.com/?p=42" {
		t.Fatalf("unexpected post ref %+v", ref)
	}

	if postPayload["status"] != "publish" {
		t.Fatalf("expected publish status, got %v", postPayload["status"])
	}
	if postPayload["featured_media"] != float64(77) {
		t.Fatalf("expected featured media 77, got %v", postPayload["featured_media"])
	}
	categories, _ := postPayload["categories"].([]any)
	if len(categories) != 1 || categories[0] != float64(12) {
		t.Fatalf("expected site category id 12, got %v", postPayload["categories"])
	}
}

func TestCreatePostReusesExistingCategory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("existing category must not be recreated, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`[{"id": 9, "name": "Games"}]`))
	})
	mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		categories, _ := payload["categories"].([]any)
		if len(categories) != 1 || categories[0] != float64(9) {
			t.Errorf("expected category id 9, got %v", payload["categories"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 43, "link": "https://blog.example.com/?p=43"})
	})

	client := newTestClient(t, mux)
	ref, err := client.CreatePost(context.Background(), services.PostRequest{
		Title:    "Gundam Wing",
		Body:     "<p>Description</p>",
		Category: config.Category{ID: 5, Name: "Games"},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if ref.ID != 43 {
		t.Fatalf("unexpected post ref %+v", ref)
	}
}

func TestCreatePostSurfacesRESTError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 9, "name": "Games"}]`))
	})
	mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"rest_cannot_create"}`))
	})

	client := newTestClient(t, mux)
	_, err := client.CreatePost(context.Background(), services.PostRequest{
		Title:    "Gundam Wing",
		Body:     "<p>Description</p>",
		Category: config.Category{ID: 5, Name: "Games"},
	})
	if err == nil {
		t.Fatal("expected REST error")
	}
}

func TestHealthCheck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		_, _ = w.Write([]byte(`{"id": 1, "name": "tester"}`))
	})

	client := newTestClient(t, mux)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}
