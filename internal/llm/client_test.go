package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(t *testing.T, content string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	})
	require.NoError(t, err)
	return b
}

func TestClientCall_Success(t *testing.T) {
	var gotReq chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(chatReply(t, conformingPayload))
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: ts.URL + "/v1"}, nil)
	parsed, raw, err := c.Call(context.Background(), "system", "user", "gpt-5-mini")
	require.NoError(t, err)

	assert.Equal(t, conformingPayload, raw)
	assert.Equal(t, "History", parsed["category"])
	questions, ok := parsed["questions"].([]any)
	require.True(t, ok)
	require.Len(t, questions, 1)
	// Numbers stay as json.Number so the validator can tell ints from floats.
	q := questions[0].(map[string]any)
	assert.Equal(t, json.Number("1"), q["number"])

	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "gpt-5-mini", gotReq.Model)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_schema", gotReq.ResponseFormat.Type)
	assert.Equal(t, SchemaName, gotReq.ResponseFormat.JSONSchema.Name)
	assert.True(t, gotReq.ResponseFormat.JSONSchema.Strict)

	snap := c.Stats().Snapshot()
	assert.Equal(t, 1, snap.Count)
}

func TestClientCall_NonJSONPayloadDecodesEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply(t, "I could not produce JSON, sorry."))
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: ts.URL}, nil)
	parsed, raw, err := c.Call(context.Background(), "s", "u", "m")
	require.NoError(t, err)
	assert.Empty(t, parsed)
	assert.Equal(t, "I could not produce JSON, sorry.", raw)
}

func TestClientCall_HTTPErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: ts.URL}, nil)
	_, _, err := c.Call(context.Background(), "s", "u", "m")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Contains(t, invErr.Error(), "status 500")
}

func TestClientCall_ProviderErrorObject(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "invalid_request_error", "message": "unknown model"},
		})
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: ts.URL}, nil)
	_, _, err := c.Call(context.Background(), "s", "u", "m")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Contains(t, invErr.Error(), "invalid_request_error")
	assert.Contains(t, invErr.Error(), "unknown model")
}

func TestClientCall_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // closed before use forces a connection failure

	c := NewClient(Config{APIKey: "k", BaseURL: ts.URL}, nil)
	_, _, err := c.Call(context.Background(), "s", "u", "m")

	var invErr *InvocationError
	assert.ErrorAs(t, err, &invErr)
}

func TestClientCall_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: ts.URL}, nil)
	parsed, raw, err := c.Call(context.Background(), "s", "u", "m")
	require.NoError(t, err)
	assert.Empty(t, parsed)
	assert.Equal(t, "", raw)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}
