package trainer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, handler http.Handler) EngineClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewEngineClient(EngineConfig{Endpoint: server.URL})
}

func TestEngineTokenize(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tokenize", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req TokenizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "org/base-model", req.ModelID)
		assert.Equal(t, 128, req.MaxLength)
		assert.True(t, req.Truncation)

		_ = json.NewEncoder(w).Encode(TokenizeResponse{
			InputIDs:      [][]int{{101, 2023, 102}},
			AttentionMask: [][]int{{1, 1, 1}},
		})
	})

	engine := newTestEngine(t, mux)
	resp, err := engine.Tokenize(context.Background(), TokenizeRequest{
		ModelID:    "org/base-model",
		Texts:      []string{"hello"},
		MaxLength:  128,
		Truncation: true,
		Padding:    "max_length",
	})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{101, 2023, 102}}, resp.InputIDs)
}

func TestEngineErrorBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "out of memory"}`))
	})

	engine := newTestEngine(t, mux)
	_, err := engine.Search(context.Background(), SearchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StatusCode 500")
	assert.Contains(t, err.Error(), "out of memory")
}

func TestEngineContextCancellation(t *testing.T) {
	engine := newTestEngine(t, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Predict(ctx, PredictRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
