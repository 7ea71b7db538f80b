package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *GeminiClient {
	c := NewGeminiClient()
	c.APIKey = "test-key"
	c.BaseURL = srv.URL
	c.HTTP = srv.Client()
	return c
}

func TestAutoReply_UsesGeminiAnswer(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := generateResponse{}
		resp.Candidates = []struct {
			Content content `json:"content"`
		}{
			{Content: content{Role: "model", Parts: []part{{Text: "Bonjour, votre commande est en cours de préparation."}}}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	reply := c.AutoReply(context.Background(), "order", "Où est ma commande ?", "Commande ORD-ABC passée lundi.")

	assert.Equal(t, "Bonjour, votre commande est en cours de préparation.", reply)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)

	require.Len(t, gotBody.Contents, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "commande")
	assert.Contains(t, prompt, "Où est ma commande ?")
}

func TestAutoReply_FallbackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	reply := c.AutoReply(context.Background(), "payment", "Remboursement", "...")
	assert.Equal(t, FallbackReply, reply)
}

func TestAutoReply_FallbackWithoutAPIKey(t *testing.T) {
	c := NewGeminiClient()
	c.APIKey = ""

	reply := c.AutoReply(context.Background(), "other", "Question", "...")
	assert.Equal(t, FallbackReply, reply)
}

func TestBuildPrompt_UnknownCategoryFallsBackToOther(t *testing.T) {
	prompt := buildPrompt("nonsense", "Titre", "Corps")
	assert.True(t, strings.Contains(prompt, "autre"))
}
