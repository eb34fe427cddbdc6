package openai_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"craftpress/internal/config"
	"craftpress/internal/services/openai"
)

func newTestClient(t *testing.T, handler http.Handler) (*openai.Client, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	imagesDir := t.TempDir()
	client := openai.NewClient(config.OpenAI{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "gpt-4o-mini",
		ImageModel: "dall-e-3",
		ImageSize:  "1024x1024",
	}, imagesDir)
	return client, imagesDir
}

func TestGenerateDescription(t *testing.T) {
	description := "Pikachu is a beloved electric-type icon and this papercraft version captures every detail of the little mouse."
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": description}},
			},
		})
	}))

	got, err := client.GenerateDescription(context.Background(), "Pokemon Pikachu")
	if err != nil {
		t.Fatalf("GenerateDescription: %v", err)
	}
	if got != description {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestGenerateDescriptionRejectsShortOutput(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Nice model."}},
			},
		})
	}))

	if _, err := client.GenerateDescription(context.Background(), "Pokemon Pikachu"); err == nil {
		t.Fatal("expected degenerate-output error")
	}
}

func TestGenerateDescriptionSurfacesAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))

	_, err := client.GenerateDescription(context.Background(), "Pokemon Pikachu")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestGetOrGenerateImageReusesExistingFile(t *testing.T) {
	requests := 0
	client, imagesDir := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	existing := filepath.Join(imagesDir, "pokemon_pikachu.png")
	if err := os.WriteFile(existing, []byte("png bytes"), 0o644); err != nil {
		t.Fatalf("seed image: %v", err)
	}

	path, err := client.GetOrGenerateImage(context.Background(), "Pokemon Pikachu")
	if err != nil {
		t.Fatalf("GetOrGenerateImage: %v", err)
	}
	if path != existing {
		t.Fatalf("expected existing image %s, got %s", existing, path)
	}
	if requests != 0 {
		t.Fatalf("reuse must not call the API, got %d requests", requests)
	}
}

func TestGetOrGenerateImageGeneratesAndSaves(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("generated png bytes"))
	client, imagesDir := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": payload}},
		})
	}))

	path, err := client.GetOrGenerateImage(context.Background(), "Pokemon Pikachu")
	if err != nil {
		t.Fatalf("GetOrGenerateImage: %v", err)
	}
	want := filepath.Join(imagesDir, "pokemon_pikachu.png")
	if path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read generated image: %v", err)
	}
	if string(data) != "generated png bytes" {
		t.Fatalf("unexpected image content %q", data)
	}
}

func TestGetOrGenerateImageErrorsWhenGenerationDisabled(t *testing.T) {
	client := openai.NewClient(config.OpenAI{APIKey: "test-key"}, t.TempDir())
	if _, err := client.GetOrGenerateImage(context.Background(), "Pokemon Pikachu"); err == nil {
		t.Fatal("expected error with no local image and no image model")
	}
}

func TestHealthCheck(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	failing, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	if err := failing.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected unauthorized health check to fail")
	}
}
