package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

func fakeService(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest

		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)

		w.WriteHeader(status)

		if status == http.StatusOK {
			resp := chatResponse{}
			resp.Choices = append(resp.Choices, struct {
				Message chatMessage `json:"message"`
			}{Message: chatMessage{Role: "assistant", Content: content}})
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}
	}))

	t.Cleanup(srv.Close)

	return srv
}

// TestReview_Success verifies the full request/decode path.
func TestReview_Success(t *testing.T) {
	t.Parallel()

	srv := fakeService(t, http.StatusOK, "```json\n"+validPayload+"\n```")
	client := NewClient(srv.URL, "test-model", "test-key", testTimeout, nil)

	findings, err := client.Review(context.Background(), "main.go", 1, "func a(){}\n")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "nil deref", findings[0].Issue)
}

// TestReview_MalformedOutput verifies that free-text model output surfaces
// as a DecodeError, not a transport error.
func TestReview_MalformedOutput(t *testing.T) {
	t.Parallel()

	srv := fakeService(t, http.StatusOK, "not json")
	client := NewClient(srv.URL, "test-model", "test-key", testTimeout, nil)

	var decodeErr *DecodeError

	_, err := client.Review(context.Background(), "main.go", 1, "func a(){}\n")
	require.ErrorAs(t, err, &decodeErr)
}

// TestComplete_ServiceError verifies non-OK status handling.
func TestComplete_ServiceError(t *testing.T) {
	t.Parallel()

	srv := fakeService(t, http.StatusBadGateway, "")
	client := NewClient(srv.URL, "test-model", "test-key", testTimeout, nil)

	_, err := client.Complete(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrServiceStatus)
}

// TestComplete_NoChoices verifies the empty-choices sentinel.
func TestComplete_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "test-model", "", testTimeout, nil)

	_, err := client.Complete(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrEmptyResponse)
}
