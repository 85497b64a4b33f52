package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/heefoo/codesight/internal/config"
)

func TestOllamaGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"test","message":{"role":"assistant","content":"the answer"},"done":true}`))
	}))
	defer server.Close()

	provider := &OllamaProvider{
		baseURL: server.URL,
		model:   "test",
		client:  server.Client(),
	}

	got, err := provider.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "you are terse"},
		{Role: RoleUser, Content: "question"},
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if got != "the answer" {
		t.Errorf("Generate() = %q, want %q", got, "the answer")
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	provider := &OllamaProvider{
		baseURL: server.URL,
		model:   "test",
		client:  server.Client(),
	}

	_, err := provider.Generate(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	if err == nil {
		t.Fatal("expected error from server failure")
	}
	if !strings.Contains(err.Error(), "ollama error") {
		t.Errorf("error = %v, want ollama error wrapping", err)
	}
}

func TestOllamaStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		responses := []string{
			`{"model":"test","message":{"role":"assistant","content":"Hello "},"done":false}`,
			`{"model":"test","message":{"role":"assistant","content":"world"},"done":true}`,
		}
		flusher, _ := w.(http.Flusher)
		for _, resp := range responses {
			w.Write([]byte(resp + "\n"))
			flusher.Flush()
		}
	}))
	defer server.Close()

	provider := &OllamaProvider{
		baseURL: server.URL,
		model:   "test",
		client:  server.Client(),
	}

	ch, err := provider.Stream(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	if err != nil {
		t.Fatalf("Stream() failed: %v", err)
	}

	var full strings.Builder
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				if full.String() != "Hello world" {
					t.Errorf("streamed content = %q, want %q", full.String(), "Hello world")
				}
				return
			}
			full.WriteString(msg)
		case <-timeout:
			t.Fatal("timeout waiting for stream completion")
		}
	}
}

func TestOllamaStreamCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 10; i++ {
			w.Write([]byte(`{"model":"test","message":{"role":"assistant","content":"chunk "},"done":false}` + "\n"))
			flusher.Flush()
			time.Sleep(50 * time.Millisecond)
		}
	}))
	defer server.Close()

	provider := &OllamaProvider{
		baseURL: server.URL,
		model:   "test",
		client:  server.Client(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := provider.Stream(ctx, []Message{{Role: RoleUser, Content: "q"}})
	if err != nil {
		t.Fatalf("Stream() failed: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first chunk")
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // closed after cancellation
			}
		case <-deadline:
			t.Fatal("channel not closed after cancellation")
		}
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(config.LLMConfig{Provider: "not-a-provider"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
