package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestGenerate_FirstCandidateText(t *testing.T) {
	var gotPath, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.Unmarshal(body, &req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"[]"}]}},{"content":{"parts":[{"text":"second"}]}}]}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.Model())

	text, err := c.Generate(context.Background(), "suggest plants")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Equal(t, "suggest plants", gotPrompt)
	assert.True(t, strings.HasSuffix(gotPath, "models/"+DefaultModel+":generateContent"), "path = %s", gotPath)
}

func TestGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL, Model: "custom-model"})
	require.NoError(t, err)
	text, err := c.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "x")
	assert.Error(t, err)
}
