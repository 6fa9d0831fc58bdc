package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth = %q", got)
		}
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "test-model" || req.MaxTokens != 128 {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "antwort"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "test-model")
	out, err := c.Generate(context.Background(), "frage", 128)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "antwort" {
		t.Fatalf("out = %q", out)
	}
}

func TestClient_GenerateErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Error: "model overloaded"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "m")

	if _, err := c.Generate(context.Background(), "p", 1); err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("body error not surfaced: %v", err)
	}
}
