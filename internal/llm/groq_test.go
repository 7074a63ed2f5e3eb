package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ciboway/internal/config"
)

func TestGroqClient(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Errorf("Expected bearer token, got '%s'", r.Header.Get("Authorization"))
			}
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["model"] != ModelExtractor {
				t.Errorf("Expected model %s, got %v", ModelExtractor, body["model"])
			}
			fmt.Fprintln(w, `{
				"choices": [{"message": {"content": "{\"name\": \"Soup\"}"}}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
			}`)
		}))
		defer server.Close()

		client := NewGroqClient(&config.Config{GroqAPIKey: "test-key"}, ModelExtractor, 0.1).(*groqClient)
		client.endpoint = server.URL

		resp, err := client.GenerateContent(context.Background(), "prompt")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if resp.Content != `{"name": "Soup"}` {
			t.Errorf("Unexpected content %s", resp.Content)
		}
		if resp.Usage.TotalTokens != 15 || resp.Usage.Model != ModelExtractor {
			t.Errorf("Unexpected usage %+v", resp.Usage)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintln(w, `{"error": "rate limited"}`)
		}))
		defer server.Close()

		client := NewGroqClient(&config.Config{GroqAPIKey: "test-key"}, ModelExtractor, 0.1).(*groqClient)
		client.endpoint = server.URL

		if _, err := client.GenerateContent(context.Background(), "prompt"); err == nil {
			t.Fatal("Expected an error for status 429, got nil")
		}
	})

	t.Run("NoChoices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"choices": []}`)
		}))
		defer server.Close()

		client := NewGroqClient(&config.Config{GroqAPIKey: "test-key"}, ModelExtractor, 0.1).(*groqClient)
		client.endpoint = server.URL

		if _, err := client.GenerateContent(context.Background(), "prompt"); err == nil {
			t.Fatal("Expected an error when no content is generated")
		}
	})
}

func TestNewTextGenerator(t *testing.T) {
	gen, closer, err := NewTextGenerator(context.Background(), &config.Config{GroqAPIKey: "k"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer closer.Close()
	if _, ok := gen.(*groqClient); !ok {
		t.Errorf("Expected Groq client, got %T", gen)
	}

	if _, _, err := NewTextGenerator(context.Background(), &config.Config{}); err == nil {
		t.Error("Expected an error without any API key")
	}
}
