package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/config"
	"github.com/playbuni/backend/internal/model/persona"
)

func newTestImageClient(t *testing.T) *ImageClient {
	t.Helper()
	client, err := NewImageClient(config.AIConfig{
		APIKey:     "test-key",
		ImageModel: "test-image-model",
		BaseURL:    "http://unused",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewImageClient err: %v", err)
	}
	return client
}

func TestNewImageClientWithoutCredential(t *testing.T) {
	if _, err := NewImageClient(config.AIConfig{}, zap.NewNop()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGeneratePortrait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"url":"https://images.example/portrait.png"}]}`))
	}))
	defer srv.Close()

	client := newTestImageClient(t).WithBaseURL(srv.URL)
	url, err := client.GeneratePortrait(context.Background(), persona.AIPersona{AgentName: "Logic Prime"})
	if err != nil {
		t.Fatalf("GeneratePortrait err: %v", err)
	}
	if url != "https://images.example/portrait.png" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestGeneratePortraitProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestImageClient(t).WithBaseURL(srv.URL)
	if _, err := client.GeneratePortrait(context.Background(), persona.AIPersona{}); !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
}

func TestGeneratePortraitEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := newTestImageClient(t).WithBaseURL(srv.URL)
	if _, err := client.GeneratePortrait(context.Background(), persona.AIPersona{}); !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	client := newTestImageClient(t)
	data, err := client.FetchImage(context.Background(), srv.URL+"/portrait.png")
	if err != nil {
		t.Fatalf("FetchImage err: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
}
