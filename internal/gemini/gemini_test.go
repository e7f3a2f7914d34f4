package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/longkey1/gemchat/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	model   string
	baseURL string
	token   string
}

func (c testConfig) GetModel() string            { return c.model }
func (c testConfig) GetBaseURL() (string, error) { return c.baseURL, nil }
func (c testConfig) GetToken() (string, error)   { return c.token, nil }

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(
		testConfig{model: "gemini-2.0-flash", baseURL: srv.URL, token: "secret-key"},
		WithHTTPClient(srv.Client()),
		WithLogger(logger.Discard()),
	)
}

func TestGenerateContentRequest(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotKey    string
		gotType   string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello"}]}}]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).GenerateContent(context.Background(), "Hi there")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]any{
		"contents": []any{
			map[string]any{
				"parts": []any{
					map[string]any{"text": "Hi there"},
				},
			},
		},
	}, gotBody)

	text, ok := resp.Text()
	assert.True(t, ok)
	assert.Equal(t, "Hello", text)
}

func TestGenerateContentResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  bool
		wantText string
		wantOK   bool
	}{
		{
			name:     "answer",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":"first"},{"text":"second"}]}}]}`,
			wantText: "first",
			wantOK:   true,
		},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`},
		{name: "empty object", status: http.StatusOK, body: `{}`},
		{name: "no parts", status: http.StatusOK, body: `{"candidates":[{"content":{}}]}`},
		{name: "empty text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`},
		{name: "wrong shape", status: http.StatusOK, body: `{"candidates":"nope"}`},
		{
			name:     "answer next to a malformed candidate",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":"real answer"}]}},{"content":"oops"}]}`,
			wantText: "real answer",
			wantOK:   true,
		},
		{name: "json array", status: http.StatusOK, body: `[1,2]`},
		{name: "not json", status: http.StatusOK, body: `<html>oops</html>`, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"code":500}}`, wantErr: true},
		{name: "bad key", status: http.StatusBadRequest, body: `{"error":{"message":"API key not valid"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := newTestClient(srv).GenerateContent(context.Background(), "q")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			text, ok := resp.Text()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestGenerateContentErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down\n"))
	}))

	client := newTestClient(srv)

	_, err := client.GenerateContent(context.Background(), "q")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HTTPStatusCode())
	assert.Equal(t, "slow down", apiErr.Body)

	// Transport failures must not leak the API key
	srv.Close()
	_, err = client.GenerateContent(context.Background(), "q")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestGenerateContentNotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateContent(context.Background(), "q")
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestResponseTextNil(t *testing.T) {
	var r *Response
	text, ok := r.Text()
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"models":[
			{"name":"models/gemini-1.5-flash","displayName":"Gemini 1.5 Flash","supportedGenerationMethods":["generateContent"]},
			{"name":"models/embedding-001","description":"Embeddings","supportedGenerationMethods":["embedContent"]},
			{"name":"models/gemini-2.0-flash","description":"Fast","supportedGenerationMethods":["generateContent","countTokens"]}
		]}`))
	}))
	defer srv.Close()

	models, err := newTestClient(srv).ListModels(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []ModelInfo{
		{ID: "gemini-2.0-flash", Description: "Fast", IsDefault: true},
		{ID: "gemini-1.5-flash", Description: "Gemini 1.5 Flash", IsDefault: false},
	}, models)
}

func TestRedactKey(t *testing.T) {
	got := redactKey("https://example.com/models/m:generateContent?key=abc")
	assert.NotContains(t, got, "abc")
	assert.Contains(t, got, "key=REDACTED")

	assert.Equal(t, "https://example.com/models", redactKey("https://example.com/models"))
}
