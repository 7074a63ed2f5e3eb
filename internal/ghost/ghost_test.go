package ghost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ciboway/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

func TestFetchRecipes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("key") != "test_key" {
				t.Errorf("Expected key 'test_key', got '%s'", r.URL.Query().Get("key"))
			}
			if r.URL.Query().Get("filter") != "tag:recipe" {
				t.Errorf("Expected recipe tag filter, got '%s'", r.URL.Query().Get("filter"))
			}

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{
				"posts": [
					{"id": "1", "title": "Recipe 1", "html": "<h1>Recipe 1</h1>", "updated_at": "2023-10-27T10:00:00Z"},
					{"id": "2", "title": "Recipe 2", "html": "<h1>Recipe 2</h1>", "updated_at": "2023-10-28T10:00:00Z"}
				],
				"meta": {"pagination": {"page": 1, "limit": "all", "pages": 1, "total": 2}}
			}`)
		}))
		defer server.Close()

		cfg := &config.Config{
			GhostURL:        server.URL,
			GhostContentKey: "test_key",
		}
		client := NewClient(cfg)

		posts, err := client.FetchRecipes(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(posts) != 2 {
			t.Fatalf("Expected 2 posts, got %d", len(posts))
		}
		if posts[1].UpdatedAt != "2023-10-28T10:00:00Z" {
			t.Errorf("Expected updated_at to be decoded, got '%s'", posts[1].UpdatedAt)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := &config.Config{
			GhostURL:        server.URL,
			GhostContentKey: "test_key",
		}
		client := NewClient(cfg)

		_, err := client.FetchRecipes(context.Background())
		if err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})
}

func TestCreatePost(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	adminKey := "key-id:" + hex.EncodeToString(secret)

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Ghost ") {
				t.Errorf("Expected Ghost authorization header, got '%s'", auth)
			}
			token, err := jwt.Parse(strings.TrimPrefix(auth, "Ghost "), func(tok *jwt.Token) (any, error) {
				if tok.Header["kid"] != "key-id" {
					t.Errorf("Expected kid 'key-id', got '%v'", tok.Header["kid"])
				}
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/v3/admin/"))
			if err != nil || !token.Valid {
				t.Errorf("Expected a valid admin token, got %v", err)
			}

			var body struct {
				Posts []struct {
					Title  string   `json:"title"`
					Status string   `json:"status"`
					Tags   []string `json:"tags"`
				} `json:"posts"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Posts) != 1 {
				t.Errorf("Expected one post in request, got %+v (%v)", body.Posts, err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if body.Posts[0].Status != "draft" {
				t.Errorf("Expected a draft post, got %s", body.Posts[0].Status)
			}
			if len(body.Posts[0].Tags) != 1 || body.Posts[0].Tags[0] != RecipeTag {
				t.Errorf("Expected recipe tag, got %v", body.Posts[0].Tags)
			}

			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"posts": [{"id": "p1", "title": %q, "url": "http://ghost/p1"}]}`, body.Posts[0].Title)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: adminKey})
		post, err := client.CreatePost(context.Background(), "Soup", "<p>soup</p>", false)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if post.ID != "p1" || post.Title != "Soup" {
			t.Errorf("Expected post p1 'Soup', got %+v", post)
		}
	})

	t.Run("InvalidAdminKey", func(t *testing.T) {
		client := NewClient(&config.Config{GhostURL: "http://unused", GhostAdminKey: "no-secret"})
		if _, err := client.CreatePost(context.Background(), "Soup", "", false); err == nil {
			t.Fatal("Expected an error for a malformed admin key, got nil")
		}
	})
}
