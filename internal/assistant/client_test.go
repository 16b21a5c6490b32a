package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"greencycle/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestAskReturnsReplyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var payload generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Contents, 1)
		require.Contains(t, payload.Contents[0].Parts[0].Text, "User Query: how do I recycle a laptop?")

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{
				{Content: content{Parts: []part{{Text: "Drop it at a certified e-waste collection point."}}}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	reply, err := client.Ask(context.Background(), "how do I recycle a laptop?")
	require.NoError(t, err)
	require.Equal(t, "Drop it at a certified e-waste collection point.", reply)
}

func TestAskEmptyPrompt(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", "test-key")

	_, err := client.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestAskUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.Ask(context.Background(), "hello")
	require.ErrorIs(t, err, types.ErrAssistantUnavailable)
}

func TestAskEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.Ask(context.Background(), "hello")
	require.ErrorIs(t, err, types.ErrAssistantUnavailable)
}

func TestAskUnreachableEndpoint(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test-key")

	_, err := client.Ask(context.Background(), "hello")
	require.ErrorIs(t, err, types.ErrAssistantUnavailable)
}
